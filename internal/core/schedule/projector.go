package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
)

// AssignmentSource は投影が必要とする割当の読み取りポートです。
type AssignmentSource interface {
	ListOverlapping(ctx context.Context, doctorID string, from, to time.Time) ([]*assignment.Assignment, error)
}

// ExchangeSource は投影が必要とする交換履歴の読み取りポートです。
type ExchangeSource interface {
	ListApprovedTemporary(ctx context.Context, assignmentID string, from, to time.Time) ([]*exchange.Request, error)
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Projector は医師の実効スケジュールを算出します。基底割当に承認済み一時交換を
// 重ね合わせる純粋な読み取り処理で、状態を一切変更しません。
type Projector struct {
	assignments AssignmentSource
	exchanges   ExchangeSource
	catalog     shift.Catalog
	tx          TransactionManager
}

// NewProjector は Projector を生成します。
func NewProjector(assignments AssignmentSource, exchanges ExchangeSource, catalog shift.Catalog, tx TransactionManager) *Projector {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Projector{assignments: assignments, exchanges: exchanges, catalog: catalog, tx: tx}
}

// GetEffectiveSchedule は [from, to] における医師の実効スケジュールを返します。
// 範囲と交差する各割当の有効期間を範囲へ切り詰め、その割当が関与する承認済み
// 一時交換の交換日ごとに区間を分割します。交換日当日は相手側のシフトになり、
// 相手の参照が欠けている場合は元のシフトのままです。結果は EffectiveFrom 昇順です。
func (p *Projector) GetEffectiveSchedule(ctx context.Context, doctorID string, from, to time.Time) ([]*Entry, error) {
	if doctorID == "" {
		return nil, assignment.ErrInvalidDoctorID
	}

	clipLo := assignment.NormalizeDate(from)
	clipHi := assignment.NormalizeDate(to)
	if clipLo.After(clipHi) {
		return nil, assignment.ErrInvalidWindow
	}

	var entries []*Entry
	if err := p.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		assignments, err := p.assignments.ListOverlapping(txCtx, doctorID, clipLo, clipHi)
		if err != nil {
			return err
		}

		shifts := make(map[string]*shift.Shift)

		for _, a := range assignments {
			projected, err := p.projectAssignment(txCtx, a, clipLo, clipHi, shifts)
			if err != nil {
				return err
			}
			entries = append(entries, projected...)
		}

		return nil
	}); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EffectiveFrom.Before(entries[j].EffectiveFrom)
	})

	return entries, nil
}

func (p *Projector) projectAssignment(ctx context.Context, a *assignment.Assignment, rangeFrom, rangeTo time.Time, shifts map[string]*shift.Shift) ([]*Entry, error) {
	clipFrom := laterDate(a.EffectiveFrom, rangeFrom)
	clipTo := rangeTo
	if a.EffectiveTo != nil && a.EffectiveTo.Before(clipTo) {
		clipTo = *a.EffectiveTo
	}
	if clipFrom.After(clipTo) {
		return nil, nil
	}

	swaps, err := p.exchanges.ListApprovedTemporary(ctx, a.ID, clipFrom, clipTo)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(swaps, func(i, j int) bool {
		return swaps[i].ExchangeDate.Before(swaps[j].ExchangeDate)
	})

	var entries []*Entry
	cursor := clipFrom

	for _, swap := range swaps {
		day := assignment.NormalizeDate(swap.ExchangeDate)
		if day.Before(cursor) || day.After(clipTo) {
			continue
		}

		if day.After(cursor) {
			entry, err := p.buildEntry(ctx, a, a.ShiftID, cursor, day.AddDate(0, 0, -1), shifts)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}

		swappedShiftID, ok := swap.SwappedShiftID(a.ID)
		if !ok {
			swappedShiftID = a.ShiftID
		}

		entry, err := p.buildEntry(ctx, a, swappedShiftID, day, day, shifts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)

		cursor = day.AddDate(0, 0, 1)
	}

	if !cursor.After(clipTo) {
		entry, err := p.buildEntry(ctx, a, a.ShiftID, cursor, clipTo, shifts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (p *Projector) buildEntry(ctx context.Context, a *assignment.Assignment, shiftID string, from, to time.Time, shifts map[string]*shift.Shift) (*Entry, error) {
	def, err := p.lookupShift(ctx, shiftID, shifts)
	if err != nil {
		return nil, err
	}

	return &Entry{
		ShiftID:       def.ID,
		ShiftType:     def.Type,
		StartTime:     def.StartTime,
		EndTime:       def.EndTime,
		EffectiveFrom: from,
		EffectiveTo:   to,
		Status:        a.Status,
	}, nil
}

func (p *Projector) lookupShift(ctx context.Context, id string, shifts map[string]*shift.Shift) (*shift.Shift, error) {
	if def, ok := shifts[id]; ok {
		return def, nil
	}

	def, err := p.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	shifts[id] = def
	return def, nil
}

func laterDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
