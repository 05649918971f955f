package schedule

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
)

type stubAssignmentSource struct {
	assignments []*assignment.Assignment
}

func (s *stubAssignmentSource) ListOverlapping(_ context.Context, doctorID string, from, to time.Time) ([]*assignment.Assignment, error) {
	var result []*assignment.Assignment
	for _, a := range s.assignments {
		if a.DoctorID == doctorID && a.OverlapsWindow(from, to) {
			result = append(result, a)
		}
	}
	return result, nil
}

type stubExchangeSource struct {
	requests []*exchange.Request
}

func (s *stubExchangeSource) ListApprovedTemporary(_ context.Context, assignmentID string, from, to time.Time) ([]*exchange.Request, error) {
	var result []*exchange.Request
	for _, req := range s.requests {
		if req.Status != exchange.StatusApproved || req.SwapType != exchange.SwapTypeTemporary {
			continue
		}
		if !req.ParticipatesVia(assignmentID) {
			continue
		}
		if req.ExchangeDate.Before(from) || req.ExchangeDate.After(to) {
			continue
		}
		result = append(result, req)
	}
	return result, nil
}

type stubCatalog struct {
	shifts map[string]*shift.Shift
	calls  int
}

func (c *stubCatalog) FindByID(_ context.Context, id string) (*shift.Shift, error) {
	c.calls++
	def, ok := c.shifts[id]
	if !ok {
		return nil, shift.ErrShiftNotFound
	}
	return def, nil
}

func (c *stubCatalog) List(_ context.Context) ([]*shift.Shift, error) {
	var result []*shift.Shift
	for _, def := range c.shifts {
		result = append(result, def)
	}
	return result, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func newTestCatalog() *stubCatalog {
	return &stubCatalog{shifts: map[string]*shift.Shift{
		"shift-morning": {ID: "shift-morning", Type: shift.TypeMorning, StartTime: "09:00", EndTime: "13:00", RoomID: "room-1"},
		"shift-evening": {ID: "shift-evening", Type: shift.TypeEvening, StartTime: "17:00", EndTime: "21:00", RoomID: "room-2"},
	}}
}

func approvedTemporary(assignmentID, counterpartAssignmentID string, day time.Time) *exchange.Request {
	return &exchange.Request{
		ID:           "req-" + day.Format("20060102"),
		DoctorID:     "doc-1",
		AssignmentID: assignmentID,
		OldShiftID:   "shift-morning",
		Counterpart: &exchange.Counterpart{
			DoctorID:     "doc-2",
			AssignmentID: counterpartAssignmentID,
			OldShiftID:   "shift-evening",
		},
		SwapType:     exchange.SwapTypeTemporary,
		ExchangeDate: day,
		Status:       exchange.StatusApproved,
	}
}

func morningAssignment(to *time.Time) *assignment.Assignment {
	return &assignment.Assignment{
		ID:            "asg-1",
		DoctorID:      "doc-1",
		ShiftID:       "shift-morning",
		EffectiveFrom: date(2025, 1, 1),
		EffectiveTo:   to,
		Status:        assignment.StatusActive,
	}
}

func TestProjector_SwapSplitsWindow(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}
	exchanges := &stubExchangeSource{requests: []*exchange.Request{
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 15)),
	}}

	p := NewProjector(assignments, exchanges, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	assertEntry(t, entries[0], "shift-morning", date(2025, 1, 1), date(2025, 1, 14))
	assertEntry(t, entries[1], "shift-evening", date(2025, 1, 15), date(2025, 1, 15))
	assertEntry(t, entries[2], "shift-morning", date(2025, 1, 16), date(2025, 1, 31))
}

func TestProjector_SwapOnFirstDay(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}
	exchanges := &stubExchangeSource{requests: []*exchange.Request{
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 1)),
	}}

	p := NewProjector(assignments, exchanges, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	// 交換日が区間の初日なら先行区間は生成されません。
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	assertEntry(t, entries[0], "shift-evening", date(2025, 1, 1), date(2025, 1, 1))
	assertEntry(t, entries[1], "shift-morning", date(2025, 1, 2), date(2025, 1, 31))
}

func TestProjector_SwapOnLastDay(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}
	exchanges := &stubExchangeSource{requests: []*exchange.Request{
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 31)),
	}}

	p := NewProjector(assignments, exchanges, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	assertEntry(t, entries[0], "shift-morning", date(2025, 1, 1), date(2025, 1, 30))
	assertEntry(t, entries[1], "shift-evening", date(2025, 1, 31), date(2025, 1, 31))
}

func TestProjector_NoExchanges(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}

	p := NewProjector(assignments, &stubExchangeSource{}, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	assertEntry(t, entries[0], "shift-morning", date(2025, 1, 1), date(2025, 1, 31))
}

func TestProjector_MultipleSwapsInOneWindow(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}
	exchanges := &stubExchangeSource{requests: []*exchange.Request{
		// 逆順に並べても交換日でソートして処理されます。
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 20)),
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 10)),
	}}

	p := NewProjector(assignments, exchanges, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}

	assertEntry(t, entries[0], "shift-morning", date(2025, 1, 1), date(2025, 1, 9))
	assertEntry(t, entries[1], "shift-evening", date(2025, 1, 10), date(2025, 1, 10))
	assertEntry(t, entries[2], "shift-morning", date(2025, 1, 11), date(2025, 1, 19))
	assertEntry(t, entries[3], "shift-evening", date(2025, 1, 20), date(2025, 1, 20))
	assertEntry(t, entries[4], "shift-morning", date(2025, 1, 21), date(2025, 1, 31))
}

func TestProjector_ClipsOpenEndedAssignment(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(nil),
	}}

	p := NewProjector(assignments, &stubExchangeSource{}, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 3, 1), date(2025, 3, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	assertEntry(t, entries[0], "shift-morning", date(2025, 3, 1), date(2025, 3, 31))
}

func TestProjector_ClipsToAssignmentWindow(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		{
			ID:            "asg-1",
			DoctorID:      "doc-1",
			ShiftID:       "shift-morning",
			EffectiveFrom: date(2025, 1, 10),
			EffectiveTo:   datePtr(2025, 1, 20),
			Status:        assignment.StatusActive,
		},
	}}

	p := NewProjector(assignments, &stubExchangeSource{}, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	assertEntry(t, entries[0], "shift-morning", date(2025, 1, 10), date(2025, 1, 20))
}

func TestProjector_CounterpartSideSeesRequesterShift(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		{
			ID:            "asg-2",
			DoctorID:      "doc-2",
			ShiftID:       "shift-evening",
			EffectiveFrom: date(2025, 1, 1),
			EffectiveTo:   datePtr(2025, 1, 31),
			Status:        assignment.StatusActive,
		},
	}}
	exchanges := &stubExchangeSource{requests: []*exchange.Request{
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 15)),
	}}

	p := NewProjector(assignments, exchanges, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-2", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	assertEntry(t, entries[0], "shift-evening", date(2025, 1, 1), date(2025, 1, 14))
	assertEntry(t, entries[1], "shift-morning", date(2025, 1, 15), date(2025, 1, 15))
	assertEntry(t, entries[2], "shift-evening", date(2025, 1, 16), date(2025, 1, 31))
}

func TestProjector_MissingCounterpartFallsBackToOriginal(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}
	broken := approvedTemporary("asg-1", "asg-2", date(2025, 1, 15))
	broken.Counterpart = nil
	// 相手未確定のままの承認済み一時交換。交換日も元のシフトで塗られます。

	p := NewProjector(assignments, &stubExchangeSource{requests: []*exchange.Request{broken}}, newTestCatalog(), nil)

	entries, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if e.ShiftID != "shift-morning" {
			t.Errorf("entry %d: expected fallback to original shift, got %s", i, e.ShiftID)
		}
	}
}

func TestProjector_Idempotent(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}
	exchanges := &stubExchangeSource{requests: []*exchange.Request{
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 15)),
	}}

	p := NewProjector(assignments, exchanges, newTestCatalog(), nil)

	first, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("first call returned error: %v", err)
	}
	second, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31))
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical projections for identical inputs")
	}
}

func TestProjector_InvalidRange(t *testing.T) {
	t.Parallel()

	p := NewProjector(&stubAssignmentSource{}, &stubExchangeSource{}, newTestCatalog(), nil)

	_, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 2, 1), date(2025, 1, 1))
	if !errors.Is(err, assignment.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}

	_, err = p.GetEffectiveSchedule(context.Background(), "", date(2025, 1, 1), date(2025, 1, 31))
	if !errors.Is(err, assignment.ErrInvalidDoctorID) {
		t.Fatalf("expected ErrInvalidDoctorID, got %v", err)
	}
}

func TestProjector_CachesShiftLookups(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentSource{assignments: []*assignment.Assignment{
		morningAssignment(datePtr(2025, 1, 31)),
	}}
	exchanges := &stubExchangeSource{requests: []*exchange.Request{
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 10)),
		approvedTemporary("asg-1", "asg-2", date(2025, 1, 20)),
	}}
	catalog := newTestCatalog()

	p := NewProjector(assignments, exchanges, catalog, nil)

	if _, err := p.GetEffectiveSchedule(context.Background(), "doc-1", date(2025, 1, 1), date(2025, 1, 31)); err != nil {
		t.Fatalf("GetEffectiveSchedule returned error: %v", err)
	}

	// 5 区間に対してシフト定義の解決は 2 回（morning と evening）で済みます。
	if catalog.calls != 2 {
		t.Errorf("expected 2 catalog lookups, got %d", catalog.calls)
	}
}

func assertEntry(t *testing.T, e *Entry, shiftID string, from, to time.Time) {
	t.Helper()

	if e.ShiftID != shiftID {
		t.Errorf("expected shift %s, got %s", shiftID, e.ShiftID)
	}
	if !e.EffectiveFrom.Equal(from) {
		t.Errorf("expected from %v, got %v", from, e.EffectiveFrom)
	}
	if !e.EffectiveTo.Equal(to) {
		t.Errorf("expected to %v, got %v", to, e.EffectiveTo)
	}
}
