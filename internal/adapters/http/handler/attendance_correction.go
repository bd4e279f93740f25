package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kintai/internal/core/correction"
	"kintai/internal/core/punch"
	"kintai/internal/platform/metrics"
)

// AttendanceCorrectionHandler は勤怠修正エンドポイントのハンドラです。
type AttendanceCorrectionHandler struct {
	usecase correction.UseCase
	logger  *slog.Logger
}

// NewAttendanceCorrectionHandler は AttendanceCorrectionHandler を生成します。
func NewAttendanceCorrectionHandler(usecase correction.UseCase, logger *slog.Logger) *AttendanceCorrectionHandler {
	return &AttendanceCorrectionHandler{usecase: usecase, logger: logger}
}

// Register は勤怠修正のルートを登録します。
func (h *AttendanceCorrectionHandler) Register(r chi.Router) {
	r.Route("/attendance-correction", func(r chi.Router) {
		r.Post("/request/clock-in", h.request(punch.TypeClockIn))
		r.Post("/request/clock-out", h.request(punch.TypeClockOut))
		r.Post("/request/break-start", h.request(punch.TypeBreakStart))
		r.Post("/request/break-end", h.request(punch.TypeBreakEnd))
		r.Post("/approve", h.approve)
		r.Post("/reject", h.reject)
		r.Post("/cancel", h.cancel)
		r.Post("/resubmit/clock-in", h.resubmit(punch.TypeClockIn))
		r.Post("/resubmit/clock-out", h.resubmit(punch.TypeClockOut))
		r.Post("/resubmit/break-start", h.resubmit(punch.TypeBreakStart))
		r.Post("/resubmit/break-end", h.resubmit(punch.TypeBreakEnd))
	})
}

type requestCorrectionRequest struct {
	UserID     string `json:"userId"`
	WorkDate   string `json:"workDate"`
	Reason     string `json:"reason"`
	OccurredAt string `json:"occurredAt"`
}

type approveCorrectionRequest struct {
	UserID     string `json:"userId"`
	WorkDate   string `json:"workDate"`
	ApprovedBy string `json:"approvedBy"`
}

type rejectCorrectionRequest struct {
	UserID     string  `json:"userId"`
	WorkDate   string  `json:"workDate"`
	RejectedBy string  `json:"rejectedBy"`
	Comment    *string `json:"comment"`
}

type cancelCorrectionRequest struct {
	UserID     string `json:"userId"`
	WorkDate   string `json:"workDate"`
	CanceledBy string `json:"canceledBy"`
}

type resubmitCorrectionRequest struct {
	UserID      string  `json:"userId"`
	WorkDate    string  `json:"workDate"`
	RequestedBy string  `json:"requestedBy"`
	Reason      *string `json:"reason"`
	OccurredAt  string  `json:"occurredAt"`
}

func (h *AttendanceCorrectionHandler) request(punchType punch.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requestCorrectionRequest
		if !decodeBody(w, r, &req) {
			return
		}

		workDate, occurredAt, ok := parseCorrectionTimes(w, req.WorkDate, req.OccurredAt)
		if !ok {
			return
		}

		h.run(w, r.Context(), "request", func(ctx context.Context) error {
			return h.usecase.RequestCorrection(ctx, correction.RequestCorrectionInput{
				UserID:     req.UserID,
				WorkDate:   workDate,
				Reason:     req.Reason,
				PunchType:  punchType,
				OccurredAt: occurredAt,
			})
		})
	}
}

func (h *AttendanceCorrectionHandler) approve(w http.ResponseWriter, r *http.Request) {
	var req approveCorrectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	workDate, ok := parseWorkDate(w, req.WorkDate)
	if !ok {
		return
	}

	h.run(w, r.Context(), "approve", func(ctx context.Context) error {
		return h.usecase.ApproveCorrection(ctx, correction.ApproveCorrectionInput{
			UserID:     req.UserID,
			WorkDate:   workDate,
			ApprovedBy: req.ApprovedBy,
		})
	})
}

func (h *AttendanceCorrectionHandler) reject(w http.ResponseWriter, r *http.Request) {
	var req rejectCorrectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	workDate, ok := parseWorkDate(w, req.WorkDate)
	if !ok {
		return
	}

	h.run(w, r.Context(), "reject", func(ctx context.Context) error {
		return h.usecase.RejectCorrection(ctx, correction.RejectCorrectionInput{
			UserID:     req.UserID,
			WorkDate:   workDate,
			RejectedBy: req.RejectedBy,
			Comment:    req.Comment,
		})
	})
}

func (h *AttendanceCorrectionHandler) cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelCorrectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	workDate, ok := parseWorkDate(w, req.WorkDate)
	if !ok {
		return
	}

	h.run(w, r.Context(), "cancel", func(ctx context.Context) error {
		return h.usecase.CancelCorrection(ctx, correction.CancelCorrectionInput{
			UserID:     req.UserID,
			WorkDate:   workDate,
			CanceledBy: req.CanceledBy,
		})
	})
}

func (h *AttendanceCorrectionHandler) resubmit(punchType punch.Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resubmitCorrectionRequest
		if !decodeBody(w, r, &req) {
			return
		}

		workDate, occurredAt, ok := parseCorrectionTimes(w, req.WorkDate, req.OccurredAt)
		if !ok {
			return
		}

		h.run(w, r.Context(), "resubmit", func(ctx context.Context) error {
			return h.usecase.ResubmitCorrection(ctx, correction.ResubmitCorrectionInput{
				UserID:      req.UserID,
				WorkDate:    workDate,
				RequestedBy: req.RequestedBy,
				Reason:      req.Reason,
				PunchType:   punchType,
				OccurredAt:  occurredAt,
			})
		})
	}
}

func (h *AttendanceCorrectionHandler) run(w http.ResponseWriter, ctx context.Context, event string, op func(context.Context) error) {
	if err := op(ctx); err != nil {
		metrics.ObserveCorrectionEvent(event, "error")
		writeDomainError(w, h.logger, err)
		return
	}
	metrics.ObserveCorrectionEvent(event, "ok")
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeBadRequest(w, "リクエストボディが不正です")
		return false
	}
	return true
}

func parseWorkDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	workDate, err := time.Parse(workDateLayout, raw)
	if err != nil {
		writeBadRequest(w, "workDateはYYYY-MM-DD形式で指定してください")
		return time.Time{}, false
	}
	return workDate, true
}

func parseCorrectionTimes(w http.ResponseWriter, rawWorkDate, rawOccurredAt string) (workDate, occurredAt time.Time, ok bool) {
	workDate, ok = parseWorkDate(w, rawWorkDate)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	occurredAt, err := time.Parse(time.RFC3339, rawOccurredAt)
	if err != nil {
		writeBadRequest(w, "occurredAtはRFC 3339形式で指定してください")
		return time.Time{}, time.Time{}, false
	}
	return workDate, occurredAt, true
}
