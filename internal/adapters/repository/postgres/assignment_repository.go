package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/doctor"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
	pgdb "github.com/ogurasousui/clinic-shift-scheduler/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// AssignmentRepository は PostgreSQL を利用した割当永続化の実装です。
type AssignmentRepository struct {
	pool pgdb.Queryer
}

// NewAssignmentRepository は AssignmentRepository を生成します。
func NewAssignmentRepository(pool pgdb.Queryer) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Create は割当を新規作成します。
func (r *AssignmentRepository) Create(ctx context.Context, a *assignment.Assignment) (*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO doctor_shift_assignments (id, doctor_id, shift_id, effective_from, effective_to, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, doctor_id, shift_id, effective_from, effective_to, status, created_at, updated_at
    `,
		a.ID,
		a.DoctorID,
		a.ShiftID,
		a.EffectiveFrom,
		nullableDate(a.EffectiveTo),
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
	)

	created, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	return created, nil
}

// Update は割当を更新します。承認された恒久交換によるシフトの付け替えと
// 非活性化だけがここを通ります。
func (r *AssignmentRepository) Update(ctx context.Context, a *assignment.Assignment) (*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE doctor_shift_assignments
           SET shift_id = $1,
               effective_from = $2,
               effective_to = $3,
               status = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING id, doctor_id, shift_id, effective_from, effective_to, status, created_at, updated_at
    `,
		a.ShiftID,
		a.EffectiveFrom,
		nullableDate(a.EffectiveTo),
		string(a.Status),
		a.UpdatedAt,
		a.ID,
	)

	updated, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	return updated, nil
}

// FindByID は ID で割当を取得します。
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, doctor_id, shift_id, effective_from, effective_to, status, created_at, updated_at
          FROM doctor_shift_assignments
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanAssignment(row)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	return found, nil
}

// ListByDoctor は医師の割当一覧を取得します。
func (r *AssignmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, doctor_id, shift_id, effective_from, effective_to, status, created_at, updated_at
          FROM doctor_shift_assignments
         WHERE doctor_id = $1
         ORDER BY effective_from, id
    `, doctorID)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ListOverlapping は有効期間が [from, to] と交差する割当を取得します。
// 両端含む区間の交差条件は effective_from <= to かつ (effective_to IS NULL または effective_to >= from) です。
func (r *AssignmentRepository) ListOverlapping(ctx context.Context, doctorID string, from, to time.Time) ([]*assignment.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, doctor_id, shift_id, effective_from, effective_to, status, created_at, updated_at
          FROM doctor_shift_assignments
         WHERE doctor_id = $1
           AND effective_from <= $3
           AND (effective_to IS NULL OR effective_to >= $2)
         ORDER BY effective_from, id
    `, doctorID, from, to)
	if err != nil {
		return nil, translateAssignmentPgError(err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

// ExistsOverlapping は同一シフトへの活性な割当で期間が交差するものの有無を返します。
// 非活性化済みの割当は衝突と見なさないので、同じ期間への再割当が可能です。
func (r *AssignmentRepository) ExistsOverlapping(ctx context.Context, doctorID, shiftID string, from, to time.Time) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
              FROM doctor_shift_assignments
             WHERE doctor_id = $1
               AND shift_id = $2
               AND status = 'active'
               AND effective_from <= $4
               AND (effective_to IS NULL OR effective_to >= $3)
        )
    `, doctorID, shiftID, from, to)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, translateAssignmentPgError(err)
	}
	return exists, nil
}

func collectAssignments(rows pgx.Rows) ([]*assignment.Assignment, error) {
	var assignments []*assignment.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, translateAssignmentPgError(err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, translateAssignmentPgError(err)
	}

	return assignments, nil
}

func scanAssignment(row pgx.Row) (*assignment.Assignment, error) {
	var (
		id            string
		doctorID      string
		shiftID       string
		effectiveFrom time.Time
		effectiveTo   sql.NullTime
		status        string
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&doctorID,
		&shiftID,
		&effectiveFrom,
		&effectiveTo,
		&status,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assignment.ErrAssignmentNotFound
		}
		return nil, err
	}

	var toPtr *time.Time
	if effectiveTo.Valid {
		date := normalizeScannedDate(effectiveTo.Time)
		toPtr = &date
	}

	return &assignment.Assignment{
		ID:            id,
		DoctorID:      doctorID,
		ShiftID:       shiftID,
		EffectiveFrom: normalizeScannedDate(effectiveFrom),
		EffectiveTo:   toPtr,
		Status:        assignment.Status(status),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func translateAssignmentPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return assignment.ErrAssignmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "doctor_shift_assignments_doctor_id_fkey":
				return doctor.ErrDoctorNotFound
			case "doctor_shift_assignments_shift_id_fkey":
				return shift.ErrShiftNotFound
			default:
				return err
			}
		case checkViolationCode:
			return assignment.ErrInvalidWindow
		}
	}

	return err
}

func normalizeScannedDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
