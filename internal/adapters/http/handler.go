package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/schedule"
	"github.com/rs/zerolog"
)

// ScheduleReader は投影ユースケースの読み取りインターフェースです。
type ScheduleReader interface {
	GetEffectiveSchedule(ctx context.Context, doctorID string, from, to time.Time) ([]*schedule.Entry, error)
}

// Handler はスケジューリング API のハンドラ群です。ドメインの入出力を JSON に
// 写すだけの薄い層で、業務判断は持ちません。
type Handler struct {
	assignments assignment.UseCase
	exchanges   exchange.UseCase
	projector   ScheduleReader
	logger      zerolog.Logger
}

// NewHandler は Handler を生成します。
func NewHandler(assignments assignment.UseCase, exchanges exchange.UseCase, projector ScheduleReader, logger zerolog.Logger) *Handler {
	return &Handler{assignments: assignments, exchanges: exchanges, projector: projector, logger: logger}
}

// Register はルーティングを登録します。
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")

	v1.POST("/assignments", h.createAssignment)
	v1.POST("/assignments/:id/deactivate", h.deactivateAssignment)
	v1.GET("/doctors/:id/assignments", h.listAssignments)
	v1.GET("/doctors/:id/conflicts", h.checkConflict)
	v1.GET("/doctors/:id/schedule", h.getSchedule)
	v1.GET("/doctors/:id/exchange-requests", h.listExchangeRequests)
	v1.POST("/exchange-requests", h.createExchangeRequest)
	v1.POST("/exchange-requests/:id/review", h.reviewExchangeRequest)
}

func (h *Handler) createAssignment(c *gin.Context) {
	var body createAssignmentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	from, err := time.Parse(dateLayout, body.EffectiveFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "effective_from must be formatted as YYYY-MM-DD"})
		return
	}

	var to *time.Time
	if body.EffectiveTo != nil {
		parsed, err := time.Parse(dateLayout, *body.EffectiveTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "effective_to must be formatted as YYYY-MM-DD"})
			return
		}
		to = &parsed
	}

	created, err := h.assignments.CreateAssignment(c.Request.Context(), assignment.CreateAssignmentInput{
		DoctorID:      body.DoctorID,
		ShiftID:       body.ShiftID,
		EffectiveFrom: from,
		EffectiveTo:   to,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAssignmentResponse(created))
}

func (h *Handler) deactivateAssignment(c *gin.Context) {
	updated, err := h.assignments.DeactivateAssignment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAssignmentResponse(updated))
}

func (h *Handler) listAssignments(c *gin.Context) {
	assignments, err := h.assignments.ListAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, toAssignmentResponse(a))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) checkConflict(c *gin.Context) {
	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	conflict, err := h.assignments.HasConflict(c.Request.Context(), c.Param("id"), c.Query("shift_id"), from, to)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, conflictResponse{Conflict: conflict})
}

func (h *Handler) getSchedule(c *gin.Context) {
	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	entries, err := h.projector.GetEffectiveSchedule(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := make([]scheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toScheduleEntryResponse(e))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listExchangeRequests(c *gin.Context) {
	requests, err := h.exchanges.GetRequestsForDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	resp := make([]exchangeResponse, 0, len(requests))
	for _, req := range requests {
		resp = append(resp, toExchangeResponse(req))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createExchangeRequest(c *gin.Context) {
	var body createExchangeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var exchangeDate *time.Time
	if body.ExchangeDate != nil {
		parsed, err := time.Parse(dateLayout, *body.ExchangeDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "exchange_date must be formatted as YYYY-MM-DD"})
			return
		}
		exchangeDate = &parsed
	}

	created, err := h.exchanges.CreateRequest(c.Request.Context(), exchange.CreateRequestInput{
		DoctorID:                body.DoctorID,
		AssignmentID:            body.AssignmentID,
		CounterpartDoctorID:     body.CounterpartDoctorID,
		CounterpartAssignmentID: body.CounterpartAssignmentID,
		SwapType:                exchange.SwapType(body.SwapType),
		ExchangeDate:            exchangeDate,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toExchangeResponse(created))
}

func (h *Handler) reviewExchangeRequest(c *gin.Context) {
	var body reviewExchangeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	reviewed, err := h.exchanges.ReviewRequest(c.Request.Context(), exchange.ReviewRequestInput{
		RequestID:  c.Param("id"),
		Decision:   exchange.Decision(body.Decision),
		ReviewerID: body.ReviewerID,
		Note:       body.Note,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toExchangeResponse(reviewed))
}

func (h *Handler) parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.Parse(dateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "from must be formatted as YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}

	to, err := time.Parse(dateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "to must be formatted as YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}

	return from, to, true
}

func (h *Handler) renderError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, errorResponse{Error: "internal error"})
		return
	}

	c.JSON(status, errorResponse{Error: err.Error()})
}
