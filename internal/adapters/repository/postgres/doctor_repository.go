package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/doctor"
	pgdb "github.com/ogurasousui/clinic-shift-scheduler/internal/platform/db/postgres"
)

// DoctorRepository は PostgreSQL を利用した医師参照の実装です。
type DoctorRepository struct {
	pool pgdb.Queryer
}

// NewDoctorRepository は DoctorRepository を生成します。
func NewDoctorRepository(pool pgdb.Queryer) *DoctorRepository {
	return &DoctorRepository{pool: pool}
}

// FindByID は ID で医師を取得します。
func (r *DoctorRepository) FindByID(ctx context.Context, id string) (*doctor.Doctor, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, specialty, status, created_at, updated_at
          FROM doctors
         WHERE id = $1
         LIMIT 1
    `, id)

	var (
		foundID   string
		name      string
		specialty string
		status    string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&foundID, &name, &specialty, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, doctor.ErrDoctorNotFound
		}
		return nil, err
	}

	return &doctor.Doctor{
		ID:        foundID,
		Name:      name,
		Specialty: specialty,
		Status:    doctor.Status(status),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// GetSpecialty は医師の診療科を取得します。
func (r *DoctorRepository) GetSpecialty(ctx context.Context, id string) (string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT specialty FROM doctors WHERE id = $1 LIMIT 1`, id)

	var specialty string
	if err := row.Scan(&specialty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", doctor.ErrDoctorNotFound
		}
		return "", err
	}

	return specialty, nil
}
