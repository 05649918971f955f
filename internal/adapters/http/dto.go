package http

import (
	"time"

	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/schedule"
)

const dateLayout = "2006-01-02"

type createAssignmentRequest struct {
	DoctorID      string  `json:"doctor_id" binding:"required"`
	ShiftID       string  `json:"shift_id" binding:"required"`
	EffectiveFrom string  `json:"effective_from" binding:"required"`
	EffectiveTo   *string `json:"effective_to"`
}

type createExchangeRequest struct {
	DoctorID                string  `json:"doctor_id" binding:"required"`
	AssignmentID            string  `json:"assignment_id" binding:"required"`
	CounterpartDoctorID     string  `json:"counterpart_doctor_id"`
	CounterpartAssignmentID string  `json:"counterpart_assignment_id"`
	SwapType                string  `json:"swap_type" binding:"required"`
	ExchangeDate            *string `json:"exchange_date"`
}

type reviewExchangeRequest struct {
	Decision   string `json:"decision" binding:"required"`
	ReviewerID string `json:"reviewer_id" binding:"required"`
	Note       string `json:"note"`
}

type assignmentResponse struct {
	ID            string  `json:"id"`
	DoctorID      string  `json:"doctor_id"`
	ShiftID       string  `json:"shift_id"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	Status        string  `json:"status"`
}

type counterpartResponse struct {
	DoctorID     string `json:"doctor_id"`
	AssignmentID string `json:"assignment_id"`
	OldShiftID   string `json:"old_shift_id"`
}

type exchangeResponse struct {
	ID           string               `json:"id"`
	DoctorID     string               `json:"doctor_id"`
	AssignmentID string               `json:"assignment_id"`
	OldShiftID   string               `json:"old_shift_id"`
	Counterpart  *counterpartResponse `json:"counterpart,omitempty"`
	SwapType     string               `json:"swap_type"`
	ExchangeDate string               `json:"exchange_date"`
	Status       string               `json:"status"`
	ReviewerID   string               `json:"reviewer_id,omitempty"`
	ReviewNote   string               `json:"review_note,omitempty"`
	ReviewedAt   *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

type scheduleEntryResponse struct {
	ShiftID       string `json:"shift_id"`
	ShiftType     string `json:"shift_type"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	EffectiveFrom string `json:"effective_from"`
	EffectiveTo   string `json:"effective_to"`
	Status        string `json:"status"`
}

type conflictResponse struct {
	Conflict bool `json:"conflict"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toAssignmentResponse(a *assignment.Assignment) assignmentResponse {
	resp := assignmentResponse{
		ID:            a.ID,
		DoctorID:      a.DoctorID,
		ShiftID:       a.ShiftID,
		EffectiveFrom: a.EffectiveFrom.Format(dateLayout),
		Status:        string(a.Status),
	}
	if a.EffectiveTo != nil {
		to := a.EffectiveTo.Format(dateLayout)
		resp.EffectiveTo = &to
	}
	return resp
}

func toExchangeResponse(req *exchange.Request) exchangeResponse {
	resp := exchangeResponse{
		ID:           req.ID,
		DoctorID:     req.DoctorID,
		AssignmentID: req.AssignmentID,
		OldShiftID:   req.OldShiftID,
		SwapType:     string(req.SwapType),
		ExchangeDate: req.ExchangeDate.Format(dateLayout),
		Status:       string(req.Status),
		ReviewerID:   req.ReviewerID,
		ReviewNote:   req.ReviewNote,
		ReviewedAt:   req.ReviewedAt,
		CreatedAt:    req.CreatedAt,
	}
	if req.Counterpart != nil {
		resp.Counterpart = &counterpartResponse{
			DoctorID:     req.Counterpart.DoctorID,
			AssignmentID: req.Counterpart.AssignmentID,
			OldShiftID:   req.Counterpart.OldShiftID,
		}
	}
	return resp
}

func toScheduleEntryResponse(e *schedule.Entry) scheduleEntryResponse {
	return scheduleEntryResponse{
		ShiftID:       e.ShiftID,
		ShiftType:     string(e.ShiftType),
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		EffectiveFrom: e.EffectiveFrom.Format(dateLayout),
		EffectiveTo:   e.EffectiveTo.Format(dateLayout),
		Status:        string(e.Status),
	}
}
