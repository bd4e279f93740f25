package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kintai/internal/core/attendance"
	"kintai/internal/core/punch"
	"kintai/internal/platform/metrics"
)

const workDateLayout = "2006-01-02"

// AttendanceRecordHandler は勤怠記録エンドポイントのハンドラです。
type AttendanceRecordHandler struct {
	usecase attendance.UseCase
	logger  *slog.Logger
}

// NewAttendanceRecordHandler は AttendanceRecordHandler を生成します。
func NewAttendanceRecordHandler(usecase attendance.UseCase, logger *slog.Logger) *AttendanceRecordHandler {
	return &AttendanceRecordHandler{usecase: usecase, logger: logger}
}

// Register は勤怠記録のルートを登録します。
func (h *AttendanceRecordHandler) Register(r chi.Router) {
	r.Route("/attendance-record", func(r chi.Router) {
		r.Post("/clock-in", h.punch(punch.TypeClockIn, h.usecase.ClockIn))
		r.Post("/clock-out", h.punch(punch.TypeClockOut, h.usecase.ClockOut))
		r.Post("/break-start", h.punch(punch.TypeBreakStart, h.usecase.BreakStart))
		r.Post("/break-end", h.punch(punch.TypeBreakEnd, h.usecase.BreakEnd))
		r.Get("/", h.getRecord)
	})
}

type punchRequest struct {
	UserID     string `json:"userId"`
	WorkDate   string `json:"workDate"`
	OccurredAt string `json:"occurredAt"`
}

type punchEventResponse struct {
	PunchType  string  `json:"punchType"`
	OccurredAt string  `json:"occurredAt"`
	Source     string  `json:"source"`
	SourceID   *string `json:"sourceId,omitempty"`
}

type recordResponse struct {
	ID          string               `json:"id"`
	UserID      string               `json:"userId"`
	WorkDate    string               `json:"workDate"`
	Status      string               `json:"status"`
	PunchEvents []punchEventResponse `json:"punchEvents"`
}

func (h *AttendanceRecordHandler) punch(punchType punch.Type, op func(ctx context.Context, in attendance.PunchInput) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, message, ok := decodePunchInput(r)
		if !ok {
			writeBadRequest(w, message)
			return
		}

		if err := op(r.Context(), in); err != nil {
			metrics.ObservePunch(string(punchType), "error")
			writeDomainError(w, h.logger, err)
			return
		}
		metrics.ObservePunch(string(punchType), "ok")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *AttendanceRecordHandler) getRecord(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	workDate, err := time.Parse(workDateLayout, r.URL.Query().Get("workDate"))
	if err != nil {
		writeBadRequest(w, "workDateはYYYY-MM-DD形式で指定してください")
		return
	}

	record, err := h.usecase.GetRecord(r.Context(), attendance.GetRecordInput{UserID: userID, WorkDate: workDate})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func decodePunchInput(r *http.Request) (attendance.PunchInput, string, bool) {
	var req punchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return attendance.PunchInput{}, "リクエストボディが不正です", false
	}

	workDate, err := time.Parse(workDateLayout, req.WorkDate)
	if err != nil {
		return attendance.PunchInput{}, "workDateはYYYY-MM-DD形式で指定してください", false
	}

	occurredAt, err := time.Parse(time.RFC3339, req.OccurredAt)
	if err != nil {
		return attendance.PunchInput{}, "occurredAtはRFC 3339形式で指定してください", false
	}

	return attendance.PunchInput{UserID: req.UserID, WorkDate: workDate, OccurredAt: occurredAt}, "", true
}

func toRecordResponse(record *attendance.Record) recordResponse {
	events := make([]punchEventResponse, 0, len(record.PunchEvents()))
	for _, ev := range record.PunchEvents() {
		resp := punchEventResponse{
			PunchType:  string(ev.Type()),
			OccurredAt: ev.OccurredAt().Format(time.RFC3339),
			Source:     string(ev.Source()),
		}
		if sourceID, ok := ev.SourceID(); ok {
			s := sourceID.String()
			resp.SourceID = &s
		}
		events = append(events, resp)
	}

	return recordResponse{
		ID:          record.ID().String(),
		UserID:      record.UserID().String(),
		WorkDate:    record.WorkDate().Format(workDateLayout),
		Status:      string(record.Status()),
		PunchEvents: events,
	}
}
