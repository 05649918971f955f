package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
	pgdb "github.com/ogurasousui/clinic-shift-scheduler/internal/platform/db/postgres"
)

// ShiftRepository は PostgreSQL を利用したシフト定義ルックアップの実装です。
type ShiftRepository struct {
	pool pgdb.Queryer
}

// NewShiftRepository は ShiftRepository を生成します。
func NewShiftRepository(pool pgdb.Queryer) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

// FindByID は ID でシフト定義を取得します。
func (r *ShiftRepository) FindByID(ctx context.Context, id string) (*shift.Shift, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, shift_type, start_time, end_time, room_id
          FROM shifts
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanShift(row)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List はシフト定義の一覧を取得します。
func (r *ShiftRepository) List(ctx context.Context) ([]*shift.Shift, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, shift_type, start_time, end_time, room_id
          FROM shifts
         ORDER BY start_time, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []*shift.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func scanShift(row pgx.Row) (*shift.Shift, error) {
	var (
		id        string
		shiftType string
		startTime string
		endTime   string
		roomID    string
	)

	if err := row.Scan(&id, &shiftType, &startTime, &endTime, &roomID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shift.ErrShiftNotFound
		}
		return nil, err
	}

	return &shift.Shift{
		ID:        id,
		Type:      shift.Type(shiftType),
		StartTime: startTime,
		EndTime:   endTime,
		RoomID:    roomID,
	}, nil
}
