package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/doctor"
)

// Clock は現在時刻を提供します。「明日以降」の検証と翌月一日の算出に使います。
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

// Service は交換申請のワークフローをまとめます。申請作成後に割当を書き換えるのは
// このサービスの承認処理だけです。
type Service struct {
	repo        Repository
	assignments assignment.Repository
	doctors     doctor.Directory
	clock       Clock
	tx          TransactionManager
}

// UseCase は交換ワークフローの公開インターフェースです。
type UseCase interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*Request, error)
	ReviewRequest(ctx context.Context, in ReviewRequestInput) (*Request, error)
	GetRequestsForDoctor(ctx context.Context, doctorID string) ([]*Request, error)
	SameSpecialty(ctx context.Context, doctor1ID, doctor2ID string) (bool, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, assignments assignment.Repository, doctors doctor.Directory, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, assignments: assignments, doctors: doctors, clock: clock, tx: tx}
}

// CreateRequestInput は交換申請作成時の入力です。相手側は未確定でもよく、
// その場合 CounterpartDoctorID と CounterpartAssignmentID はともに空にします。
type CreateRequestInput struct {
	DoctorID                string
	AssignmentID            string
	CounterpartDoctorID     string
	CounterpartAssignmentID string
	SwapType                SwapType
	ExchangeDate            *time.Time
}

// ReviewRequestInput は交換申請審査時の入力です。
type ReviewRequestInput struct {
	RequestID  string
	Decision   Decision
	ReviewerID string
	Note       string
}

// CreateRequest は新しい交換申請を Pending で作成します。
// 一時交換は交換日が明日以降であることを要求し、恒久交換は交換日を翌月一日に
// 強制します（呼び出し側の指定は無視されます）。両割当の現在のシフト ID を
// スナップショットとして保存します。
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*Request, error) {
	doctorID, err := normalizeID(in.DoctorID, ErrInvalidDoctorID)
	if err != nil {
		return nil, err
	}

	assignmentID, err := normalizeID(in.AssignmentID, ErrInvalidAssignmentID)
	if err != nil {
		return nil, err
	}

	if !in.SwapType.IsValid() {
		return nil, fmt.Errorf("swap type %q: %w", in.SwapType, ErrInvalidSwapType)
	}

	cpDoctorID := strings.TrimSpace(in.CounterpartDoctorID)
	cpAssignmentID := strings.TrimSpace(in.CounterpartAssignmentID)
	if (cpDoctorID == "") != (cpAssignmentID == "") {
		return nil, ErrCounterpartIncomplete
	}
	hasCounterpart := cpDoctorID != ""

	if in.SwapType == SwapTypePermanent && !hasCounterpart {
		return nil, ErrCounterpartRequired
	}

	exchangeDate, err := s.resolveExchangeDate(in.SwapType, in.ExchangeDate)
	if err != nil {
		return nil, err
	}

	var created *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		a1, err := s.assignments.FindByID(txCtx, assignmentID)
		if err != nil {
			return err
		}

		var cp *Counterpart
		if hasCounterpart {
			a2, err := s.assignments.FindByID(txCtx, cpAssignmentID)
			if err != nil {
				return err
			}
			cp = &Counterpart{
				DoctorID:     cpDoctorID,
				AssignmentID: a2.ID,
				OldShiftID:   a2.ShiftID,
			}
		}

		duplicate, err := s.repo.ExistsPending(txCtx, doctorID, cpDoctorID, exchangeDate)
		if err != nil {
			return err
		}
		if duplicate {
			return ErrDuplicateRequest
		}

		now := s.clock.Now()
		req := &Request{
			ID:           uuid.NewString(),
			DoctorID:     doctorID,
			AssignmentID: a1.ID,
			OldShiftID:   a1.ShiftID,
			Counterpart:  cp,
			SwapType:     in.SwapType,
			ExchangeDate: exchangeDate,
			Status:       StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		result, err := s.repo.Create(txCtx, req)
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

// ReviewRequest は Pending の申請を承認または却下します。審査済みの申請を再度
// 審査することはできません。恒久交換の承認では、状態遷移と両割当の書き換えが
// 同一トランザクションでコミットされます。
func (s *Service) ReviewRequest(ctx context.Context, in ReviewRequestInput) (*Request, error) {
	requestID, err := normalizeID(in.RequestID, ErrInvalidRequestID)
	if err != nil {
		return nil, err
	}

	if in.Decision != DecisionApprove && in.Decision != DecisionReject {
		return nil, fmt.Errorf("decision %q: %w", in.Decision, ErrInvalidDecision)
	}

	var reviewed *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		req, err := s.repo.FindByID(txCtx, requestID)
		if err != nil {
			return err
		}

		if req.Status != StatusPending {
			return fmt.Errorf("request %s is %s: %w", req.ID, req.Status, ErrRequestNotPending)
		}

		now := s.clock.Now()
		req.ReviewerID = strings.TrimSpace(in.ReviewerID)
		req.ReviewNote = in.Note
		req.ReviewedAt = &now
		req.UpdatedAt = now

		switch in.Decision {
		case DecisionReject:
			req.Status = StatusRejected
		case DecisionApprove:
			req.Status = StatusApproved
			if req.SwapType == SwapTypePermanent {
				if err := s.applyPermanentSwap(txCtx, req, now); err != nil {
					return err
				}
			}
		}

		result, err := s.repo.Update(txCtx, req)
		if err != nil {
			return err
		}

		reviewed = result
		return nil
	}); err != nil {
		return nil, err
	}

	return reviewed, nil
}

// applyPermanentSwap は承認された恒久交換を両割当へ反映します。
// 各割当のシフト ID は相手側のスナップショット（欠けていれば相手割当の現在値）に
// 置き換えられ、EffectiveFrom は交換日より前には戻りません。
func (s *Service) applyPermanentSwap(ctx context.Context, req *Request, now time.Time) error {
	if req.Counterpart == nil {
		return ErrCounterpartRequired
	}

	a1, err := s.assignments.FindByID(ctx, req.AssignmentID)
	if err != nil {
		return err
	}

	a2, err := s.assignments.FindByID(ctx, req.Counterpart.AssignmentID)
	if err != nil {
		return err
	}

	shiftForDoctor1 := req.Counterpart.OldShiftID
	if shiftForDoctor1 == "" {
		shiftForDoctor1 = a2.ShiftID
	}
	shiftForDoctor2 := req.OldShiftID
	if shiftForDoctor2 == "" {
		shiftForDoctor2 = a1.ShiftID
	}

	a1.ShiftID = shiftForDoctor1
	a2.ShiftID = shiftForDoctor2
	a1.EffectiveFrom = laterDate(a1.EffectiveFrom, req.ExchangeDate)
	a2.EffectiveFrom = laterDate(a2.EffectiveFrom, req.ExchangeDate)
	a1.Status = assignment.StatusActive
	a2.Status = assignment.StatusActive
	a1.UpdatedAt = now
	a2.UpdatedAt = now

	if _, err := s.assignments.Update(ctx, a1); err != nil {
		return err
	}
	if _, err := s.assignments.Update(ctx, a2); err != nil {
		return err
	}

	return nil
}

// GetRequestsForDoctor は医師が関与する交換申請の一覧を取得します。
func (s *Service) GetRequestsForDoctor(ctx context.Context, doctorID string) ([]*Request, error) {
	id, err := normalizeID(doctorID, ErrInvalidDoctorID)
	if err != nil {
		return nil, err
	}

	var result []*Request
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

// SameSpecialty は二人の医師の診療科が一致するかを返します。交換の適格性判断の
// ための参考情報であり、CreateRequest では強制されません。
func (s *Service) SameSpecialty(ctx context.Context, doctor1ID, doctor2ID string) (bool, error) {
	d1, err := normalizeID(doctor1ID, ErrInvalidDoctorID)
	if err != nil {
		return false, err
	}

	d2, err := normalizeID(doctor2ID, ErrInvalidDoctorID)
	if err != nil {
		return false, err
	}

	s1, err := s.doctors.GetSpecialty(ctx, d1)
	if err != nil {
		return false, err
	}

	s2, err := s.doctors.GetSpecialty(ctx, d2)
	if err != nil {
		return false, err
	}

	return s1 == s2, nil
}

func (s *Service) resolveExchangeDate(swapType SwapType, requested *time.Time) (time.Time, error) {
	today := assignment.NormalizeDate(s.clock.Now())

	switch swapType {
	case SwapTypeTemporary:
		if requested == nil {
			return time.Time{}, ErrExchangeDateRequired
		}
		date := assignment.NormalizeDate(*requested)
		tomorrow := today.AddDate(0, 0, 1)
		if date.Before(tomorrow) {
			return time.Time{}, fmt.Errorf("exchange date %s: %w", date.Format("2006-01-02"), ErrExchangeDateTooSoon)
		}
		return date, nil
	case SwapTypePermanent:
		return firstOfNextMonth(today), nil
	default:
		return time.Time{}, ErrInvalidSwapType
	}
}

func firstOfNextMonth(today time.Time) time.Time {
	return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

func laterDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func normalizeID(raw string, sentinel error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", sentinel
	}
	return trimmed, nil
}
