package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/schedule"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
	"github.com/rs/zerolog"
)

type stubAssignmentUseCase struct {
	createFn     func(ctx context.Context, in assignment.CreateAssignmentInput) (*assignment.Assignment, error)
	deactivateFn func(ctx context.Context, id string) (*assignment.Assignment, error)
	listFn       func(ctx context.Context, doctorID string) ([]*assignment.Assignment, error)
	conflictFn   func(ctx context.Context, doctorID, shiftID string, from, to time.Time) (bool, error)
}

func (s *stubAssignmentUseCase) CreateAssignment(ctx context.Context, in assignment.CreateAssignmentInput) (*assignment.Assignment, error) {
	return s.createFn(ctx, in)
}

func (s *stubAssignmentUseCase) GetAssignment(_ context.Context, _ string) (*assignment.Assignment, error) {
	return nil, assignment.ErrAssignmentNotFound
}

func (s *stubAssignmentUseCase) ListAssignments(ctx context.Context, doctorID string) ([]*assignment.Assignment, error) {
	return s.listFn(ctx, doctorID)
}

func (s *stubAssignmentUseCase) DeactivateAssignment(ctx context.Context, id string) (*assignment.Assignment, error) {
	return s.deactivateFn(ctx, id)
}

func (s *stubAssignmentUseCase) HasConflict(ctx context.Context, doctorID, shiftID string, from, to time.Time) (bool, error) {
	return s.conflictFn(ctx, doctorID, shiftID, from, to)
}

type stubExchangeUseCase struct {
	createFn func(ctx context.Context, in exchange.CreateRequestInput) (*exchange.Request, error)
	reviewFn func(ctx context.Context, in exchange.ReviewRequestInput) (*exchange.Request, error)
	listFn   func(ctx context.Context, doctorID string) ([]*exchange.Request, error)
}

func (s *stubExchangeUseCase) CreateRequest(ctx context.Context, in exchange.CreateRequestInput) (*exchange.Request, error) {
	return s.createFn(ctx, in)
}

func (s *stubExchangeUseCase) ReviewRequest(ctx context.Context, in exchange.ReviewRequestInput) (*exchange.Request, error) {
	return s.reviewFn(ctx, in)
}

func (s *stubExchangeUseCase) GetRequestsForDoctor(ctx context.Context, doctorID string) ([]*exchange.Request, error) {
	return s.listFn(ctx, doctorID)
}

func (s *stubExchangeUseCase) SameSpecialty(_ context.Context, _, _ string) (bool, error) {
	return false, nil
}

type stubScheduleReader struct {
	fn func(ctx context.Context, doctorID string, from, to time.Time) ([]*schedule.Entry, error)
}

func (s *stubScheduleReader) GetEffectiveSchedule(ctx context.Context, doctorID string, from, to time.Time) ([]*schedule.Entry, error) {
	return s.fn(ctx, doctorID, from, to)
}

func newTestRouter(assignments *stubAssignmentUseCase, exchanges *stubExchangeUseCase, projector *stubScheduleReader) http.Handler {
	h := NewHandler(assignments, exchanges, projector, zerolog.Nop())
	return NewRouter(h, zerolog.Nop())
}

func performJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateAssignment(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentUseCase{
		createFn: func(_ context.Context, in assignment.CreateAssignmentInput) (*assignment.Assignment, error) {
			return &assignment.Assignment{
				ID:            "asg-1",
				DoctorID:      in.DoctorID,
				ShiftID:       in.ShiftID,
				EffectiveFrom: in.EffectiveFrom,
				EffectiveTo:   in.EffectiveTo,
				Status:        assignment.StatusActive,
			}, nil
		},
	}

	router := newTestRouter(assignments, &stubExchangeUseCase{}, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/assignments", map[string]any{
		"doctor_id":      "doc-1",
		"shift_id":       "shift-morning",
		"effective_from": "2025-01-01",
		"effective_to":   "2025-12-31",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp assignmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "asg-1" || resp.EffectiveFrom != "2025-01-01" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.EffectiveTo == nil || *resp.EffectiveTo != "2025-12-31" {
		t.Fatalf("unexpected effective_to %+v", resp.EffectiveTo)
	}
}

func TestHandler_CreateAssignment_Conflict(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentUseCase{
		createFn: func(_ context.Context, _ assignment.CreateAssignmentInput) (*assignment.Assignment, error) {
			return nil, assignment.ErrShiftConflict
		},
	}

	router := newTestRouter(assignments, &stubExchangeUseCase{}, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/assignments", map[string]any{
		"doctor_id":      "doc-1",
		"shift_id":       "shift-morning",
		"effective_from": "2025-01-01",
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreateAssignment_BadDate(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubAssignmentUseCase{}, &stubExchangeUseCase{}, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/assignments", map[string]any{
		"doctor_id":      "doc-1",
		"shift_id":       "shift-morning",
		"effective_from": "01/15/2025",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CreateExchangeRequest(t *testing.T) {
	t.Parallel()

	exchanges := &stubExchangeUseCase{
		createFn: func(_ context.Context, in exchange.CreateRequestInput) (*exchange.Request, error) {
			return &exchange.Request{
				ID:           "req-1",
				DoctorID:     in.DoctorID,
				AssignmentID: in.AssignmentID,
				OldShiftID:   "shift-morning",
				SwapType:     in.SwapType,
				ExchangeDate: *in.ExchangeDate,
				Status:       exchange.StatusPending,
			}, nil
		},
	}

	router := newTestRouter(&stubAssignmentUseCase{}, exchanges, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/exchange-requests", map[string]any{
		"doctor_id":     "doc-1",
		"assignment_id": "asg-1",
		"swap_type":     "temporary",
		"exchange_date": "2025-01-15",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp exchangeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != string(exchange.StatusPending) || resp.ExchangeDate != "2025-01-15" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandler_ReviewExchangeRequest_NotPending(t *testing.T) {
	t.Parallel()

	exchanges := &stubExchangeUseCase{
		reviewFn: func(_ context.Context, _ exchange.ReviewRequestInput) (*exchange.Request, error) {
			return nil, exchange.ErrRequestNotPending
		},
	}

	router := newTestRouter(&stubAssignmentUseCase{}, exchanges, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/exchange-requests/req-1/review", map[string]any{
		"decision":    "approve",
		"reviewer_id": "mgr-1",
	})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_ReviewExchangeRequest_NotFound(t *testing.T) {
	t.Parallel()

	exchanges := &stubExchangeUseCase{
		reviewFn: func(_ context.Context, _ exchange.ReviewRequestInput) (*exchange.Request, error) {
			return nil, exchange.ErrRequestNotFound
		},
	}

	router := newTestRouter(&stubAssignmentUseCase{}, exchanges, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodPost, "/api/v1/exchange-requests/missing/review", map[string]any{
		"decision":    "approve",
		"reviewer_id": "mgr-1",
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_GetSchedule(t *testing.T) {
	t.Parallel()

	projector := &stubScheduleReader{
		fn: func(_ context.Context, doctorID string, from, to time.Time) ([]*schedule.Entry, error) {
			if doctorID != "doc-1" {
				t.Errorf("unexpected doctor id %s", doctorID)
			}
			return []*schedule.Entry{
				{
					ShiftID:       "shift-morning",
					ShiftType:     shift.TypeMorning,
					StartTime:     "09:00",
					EndTime:       "13:00",
					EffectiveFrom: from,
					EffectiveTo:   to,
					Status:        assignment.StatusActive,
				},
			}, nil
		},
	}

	router := newTestRouter(&stubAssignmentUseCase{}, &stubExchangeUseCase{}, projector)

	rec := performJSON(t, router, http.MethodGet, "/api/v1/doctors/doc-1/schedule?from=2025-01-01&to=2025-01-31", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []scheduleEntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ShiftType != "morning" || resp[0].EffectiveFrom != "2025-01-01" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestHandler_GetSchedule_MissingRange(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubAssignmentUseCase{}, &stubExchangeUseCase{}, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodGet, "/api/v1/doctors/doc-1/schedule", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_CheckConflict(t *testing.T) {
	t.Parallel()

	assignments := &stubAssignmentUseCase{
		conflictFn: func(_ context.Context, doctorID, shiftID string, _, _ time.Time) (bool, error) {
			return doctorID == "doc-1" && shiftID == "shift-morning", nil
		},
	}

	router := newTestRouter(assignments, &stubExchangeUseCase{}, &stubScheduleReader{})

	rec := performJSON(t, router, http.MethodGet, "/api/v1/doctors/doc-1/conflicts?shift_id=shift-morning&from=2025-01-01&to=2025-01-31", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp conflictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Conflict {
		t.Fatal("expected conflict to be reported")
	}
}
