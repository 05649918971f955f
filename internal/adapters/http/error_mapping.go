package http

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/assignment"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/doctor"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/exchange"
	"github.com/ogurasousui/clinic-shift-scheduler/internal/core/shift"
)

// statusForError はドメインエラーを HTTP ステータスへ写します。
// 検証・不存在・重複・状態遷移の各分類が UI 側で区別できるよう別々のコードになります。
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, assignment.ErrInvalidID),
		errors.Is(err, assignment.ErrInvalidDoctorID),
		errors.Is(err, assignment.ErrInvalidShiftID),
		errors.Is(err, assignment.ErrInvalidWindow),
		errors.Is(err, exchange.ErrInvalidRequestID),
		errors.Is(err, exchange.ErrInvalidDoctorID),
		errors.Is(err, exchange.ErrInvalidAssignmentID),
		errors.Is(err, exchange.ErrInvalidSwapType),
		errors.Is(err, exchange.ErrInvalidDecision),
		errors.Is(err, exchange.ErrExchangeDateRequired),
		errors.Is(err, exchange.ErrExchangeDateTooSoon),
		errors.Is(err, exchange.ErrCounterpartRequired),
		errors.Is(err, exchange.ErrCounterpartIncomplete),
		errors.Is(err, doctor.ErrInvalidID),
		errors.Is(err, shift.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, assignment.ErrAssignmentNotFound),
		errors.Is(err, exchange.ErrRequestNotFound),
		errors.Is(err, doctor.ErrDoctorNotFound),
		errors.Is(err, shift.ErrShiftNotFound):
		return http.StatusNotFound
	case errors.Is(err, assignment.ErrShiftConflict),
		errors.Is(err, exchange.ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, exchange.ErrRequestNotPending):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
