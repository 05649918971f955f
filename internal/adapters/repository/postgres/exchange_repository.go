package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	pgdb "github.com/ogurasousui/clinic-shift-scheduler/internal/platform/db/postgres"
)

const exchangeColumns = `id, doctor_id, assignment_id, old_shift_id,
               counterpart_doctor_id, counterpart_assignment_id, counterpart_old_shift_id,
               swap_type, exchange_date, status, reviewer_id, review_note, reviewed_at,
               created_at, updated_at`

// ExchangeRepository は PostgreSQL を利用した交換申請永続化の実装です。
type ExchangeRepository struct {
	pool pgdb.Queryer
}

// NewExchangeRepository は ExchangeRepository を生成します。
func NewExchangeRepository(pool pgdb.Queryer) *ExchangeRepository {
	return &ExchangeRepository{pool: pool}
}

// Create は交換申請を新規作成します。Pending の重複はサービス層の検査に加えて
// 部分ユニークインデックスでも防がれ、違反は ErrDuplicateRequest に写されます。
func (r *ExchangeRepository) Create(ctx context.Context, req *exchange.Request) (*exchange.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var cpDoctorID, cpAssignmentID, cpOldShiftID any
	if req.Counterpart != nil {
		cpDoctorID = req.Counterpart.DoctorID
		cpAssignmentID = req.Counterpart.AssignmentID
		cpOldShiftID = req.Counterpart.OldShiftID
	}

	row := exec.QueryRow(ctx, `
        INSERT INTO shift_exchange_requests (id, doctor_id, assignment_id, old_shift_id,
               counterpart_doctor_id, counterpart_assignment_id, counterpart_old_shift_id,
               swap_type, exchange_date, status, reviewer_id, review_note, reviewed_at,
               created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL, '', NULL, $11, $12)
        RETURNING `+exchangeColumns+`
    `,
		req.ID,
		req.DoctorID,
		req.AssignmentID,
		req.OldShiftID,
		cpDoctorID,
		cpAssignmentID,
		cpOldShiftID,
		string(req.SwapType),
		req.ExchangeDate,
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	)

	created, err := scanExchangeRequest(row)
	if err != nil {
		return nil, translateExchangePgError(err)
	}
	return created, nil
}

// Update は審査結果を反映します。Pending の行だけを遷移させる条件付き UPDATE なので、
// 並行する審査のうち一方だけが成功します。スナップショット列と申請内容は変更されません。
func (r *ExchangeRepository) Update(ctx context.Context, req *exchange.Request) (*exchange.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var reviewerID any
	if req.ReviewerID != "" {
		reviewerID = req.ReviewerID
	}

	row := exec.QueryRow(ctx, `
        UPDATE shift_exchange_requests
           SET status = $1,
               reviewer_id = $2,
               review_note = $3,
               reviewed_at = $4,
               updated_at = $5
         WHERE id = $6
           AND status = 'pending'
        RETURNING `+exchangeColumns+`
    `,
		string(req.Status),
		reviewerID,
		req.ReviewNote,
		nullableTimestamp(req.ReviewedAt),
		req.UpdatedAt,
		req.ID,
	)

	updated, err := scanExchangeRequest(row)
	if err != nil {
		// 行が返らないのは別の審査が先に Pending から遷移させたケースです。
		if errors.Is(err, exchange.ErrRequestNotFound) {
			return nil, exchange.ErrRequestNotPending
		}
		return nil, translateExchangePgError(err)
	}
	return updated, nil
}

// FindByID は ID で交換申請を取得します。
func (r *ExchangeRepository) FindByID(ctx context.Context, id string) (*exchange.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+exchangeColumns+`
          FROM shift_exchange_requests
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanExchangeRequest(row)
	if err != nil {
		return nil, translateExchangePgError(err)
	}
	return found, nil
}

// ListByDoctor は医師が申請者側・相手側いずれかに現れる申請を新しい順で返します。
func (r *ExchangeRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*exchange.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+exchangeColumns+`
          FROM shift_exchange_requests
         WHERE doctor_id = $1 OR counterpart_doctor_id = $1
         ORDER BY created_at DESC, id DESC
    `, doctorID)
	if err != nil {
		return nil, translateExchangePgError(err)
	}
	defer rows.Close()

	return collectExchangeRequests(rows)
}

// ExistsPending は同一の医師ペアと交換日で Pending の申請が存在するかを返します。
// ペアの並び順は区別しません。
func (r *ExchangeRepository) ExistsPending(ctx context.Context, doctorID, counterpartDoctorID string, date time.Time) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
              FROM shift_exchange_requests
             WHERE status = 'pending'
               AND exchange_date = $3
               AND (
                     (doctor_id = $1 AND COALESCE(counterpart_doctor_id, '') = $2)
                  OR (doctor_id = $2 AND COALESCE(counterpart_doctor_id, '') = $1)
               )
        )
    `, doctorID, counterpartDoctorID, date)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, translateExchangePgError(err)
	}
	return exists, nil
}

// ListApprovedTemporary は指定割当が関与する承認済み一時交換のうち、交換日が
// [from, to] に含まれるものを交換日昇順で返します。
func (r *ExchangeRepository) ListApprovedTemporary(ctx context.Context, assignmentID string, from, to time.Time) ([]*exchange.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+exchangeColumns+`
          FROM shift_exchange_requests
         WHERE status = 'approved'
           AND swap_type = 'temporary'
           AND exchange_date BETWEEN $2 AND $3
           AND (assignment_id = $1 OR counterpart_assignment_id = $1)
         ORDER BY exchange_date, id
    `, assignmentID, from, to)
	if err != nil {
		return nil, translateExchangePgError(err)
	}
	defer rows.Close()

	return collectExchangeRequests(rows)
}

func collectExchangeRequests(rows pgx.Rows) ([]*exchange.Request, error) {
	var requests []*exchange.Request
	for rows.Next() {
		req, err := scanExchangeRequest(rows)
		if err != nil {
			return nil, translateExchangePgError(err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, translateExchangePgError(err)
	}

	return requests, nil
}

func scanExchangeRequest(row pgx.Row) (*exchange.Request, error) {
	var (
		id             string
		doctorID       string
		assignmentID   string
		oldShiftID     string
		cpDoctorID     sql.NullString
		cpAssignmentID sql.NullString
		cpOldShiftID   sql.NullString
		swapType       string
		exchangeDate   time.Time
		status         string
		reviewerID     sql.NullString
		reviewNote     string
		reviewedAt     sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
	)

	if err := row.Scan(
		&id,
		&doctorID,
		&assignmentID,
		&oldShiftID,
		&cpDoctorID,
		&cpAssignmentID,
		&cpOldShiftID,
		&swapType,
		&exchangeDate,
		&status,
		&reviewerID,
		&reviewNote,
		&reviewedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, exchange.ErrRequestNotFound
		}
		return nil, err
	}

	var cp *exchange.Counterpart
	if cpDoctorID.Valid && cpAssignmentID.Valid {
		cp = &exchange.Counterpart{
			DoctorID:     cpDoctorID.String,
			AssignmentID: cpAssignmentID.String,
			OldShiftID:   cpOldShiftID.String,
		}
	}

	var reviewedPtr *time.Time
	if reviewedAt.Valid {
		t := reviewedAt.Time.UTC()
		reviewedPtr = &t
	}

	return &exchange.Request{
		ID:           id,
		DoctorID:     doctorID,
		AssignmentID: assignmentID,
		OldShiftID:   oldShiftID,
		Counterpart:  cp,
		SwapType:     exchange.SwapType(swapType),
		ExchangeDate: normalizeScannedDate(exchangeDate),
		Status:       exchange.Status(status),
		ReviewerID:   reviewerID.String,
		ReviewNote:   reviewNote,
		ReviewedAt:   reviewedPtr,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateExchangePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return exchange.ErrRequestNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return exchange.ErrDuplicateRequest
		case foreignKeyViolationCode:
			return assignment.ErrAssignmentNotFound
		}
	}

	return err
}

func nullableTimestamp(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
