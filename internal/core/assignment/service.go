package assignment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は割当に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は割当ユースケースの公開インターフェースです。
type UseCase interface {
	CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*Assignment, error)
	GetAssignment(ctx context.Context, id string) (*Assignment, error)
	ListAssignments(ctx context.Context, doctorID string) ([]*Assignment, error)
	DeactivateAssignment(ctx context.Context, id string) (*Assignment, error)
	HasConflict(ctx context.Context, doctorID, shiftID string, from, to time.Time) (bool, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateAssignmentInput は割当作成時の入力です。
type CreateAssignmentInput struct {
	DoctorID      string
	ShiftID       string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// CreateAssignment は新しい割当を作成します。同一シフトで有効期間が交差する割当が
// 既に存在する場合は ErrShiftConflict を返します。
func (s *Service) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (*Assignment, error) {
	doctorID, err := normalizeDoctorID(in.DoctorID)
	if err != nil {
		return nil, err
	}

	shiftID, err := normalizeShiftID(in.ShiftID)
	if err != nil {
		return nil, err
	}

	from := NormalizeDate(in.EffectiveFrom)
	to := normalizeDatePtr(in.EffectiveTo)
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}

	var created *Assignment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		conflictTo := from
		if to != nil {
			conflictTo = *to
		} else {
			conflictTo = openEndedHorizon(from)
		}

		conflict, err := s.repo.ExistsOverlapping(txCtx, doctorID, shiftID, from, conflictTo)
		if err != nil {
			return err
		}
		if conflict {
			return ErrShiftConflict
		}

		now := s.clock.Now()
		a := &Assignment{
			ID:            uuid.NewString(),
			DoctorID:      doctorID,
			ShiftID:       shiftID,
			EffectiveFrom: from,
			EffectiveTo:   to,
			Status:        StatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		result, err := s.repo.Create(txCtx, a)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetAssignment は割当を取得します。
func (s *Service) GetAssignment(ctx context.Context, id string) (*Assignment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Assignment
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListAssignments は医師の割当一覧を取得します。
func (s *Service) ListAssignments(ctx context.Context, doctorID string) ([]*Assignment, error) {
	id, err := normalizeDoctorID(doctorID)
	if err != nil {
		return nil, err
	}

	var result []*Assignment
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListByDoctor(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// DeactivateAssignment は割当を非活性化します。割当は削除されません。
func (s *Service) DeactivateAssignment(ctx context.Context, id string) (*Assignment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Assignment
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		existing.Status = StatusInactive
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// HasConflict は医師が同一シフトで [from, to] と交差する割当を既に持つかを返します。
// 交換申請は考慮しません。
func (s *Service) HasConflict(ctx context.Context, doctorID, shiftID string, from, to time.Time) (bool, error) {
	did, err := normalizeDoctorID(doctorID)
	if err != nil {
		return false, err
	}

	sid, err := normalizeShiftID(shiftID)
	if err != nil {
		return false, err
	}

	f := NormalizeDate(from)
	t := NormalizeDate(to)
	if f.After(t) {
		return false, ErrInvalidWindow
	}

	var conflict bool
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ExistsOverlapping(txCtx, did, sid, f, t)
		if err != nil {
			return err
		}
		conflict = found
		return nil
	}); err != nil {
		return false, err
	}

	return conflict, nil
}

// NormalizeDate は時刻を UTC の日付単位 (00:00) に丸めます。
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func normalizeDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := NormalizeDate(*t)
	return &normalized
}

func normalizeDoctorID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidDoctorID
	}
	return trimmed, nil
}

func normalizeShiftID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidShiftID
	}
	return trimmed, nil
}

func validateWindow(from time.Time, to *time.Time) error {
	if to != nil && to.Before(from) {
		return ErrInvalidWindow
	}
	return nil
}

// openEndedHorizon は無期限割当の衝突判定に使う上限日付を返します。
func openEndedHorizon(from time.Time) time.Time {
	return from.AddDate(100, 0, 0)
}
