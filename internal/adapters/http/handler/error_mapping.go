package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kintai/internal/core/attendance"
	"kintai/internal/core/correction"
	"kintai/internal/core/identity"
	"kintai/internal/core/rule"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeDomainError はドメインエラーをHTTPステータスへ変換して返却します。
// 入力不備は 400、対象なしは 404、状態・制約の衝突は 409、それ以外は 500 です。
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusCodeFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("リクエスト処理に失敗しました", "error", err)
		writeJSON(w, status, errorResponse{Error: "内部エラーが発生しました"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusCodeFor(err error) int {
	var invalidState *attendance.InvalidStateError
	var clockInWindow *rule.ClockInWindowError
	var clockOutWindow *rule.ClockOutWindowError

	switch {
	case errors.Is(err, identity.ErrInvalidID),
		errors.Is(err, attendance.ErrInvalidUserID),
		errors.Is(err, correction.ErrInvalidUserID),
		errors.Is(err, correction.ErrInvalidPunchCount),
		errors.Is(err, correction.ErrUnknownPunchType),
		errors.Is(err, rule.ErrInvalidRuleID),
		errors.Is(err, rule.ErrInvalidTimeFormat),
		errors.Is(err, rule.ErrInvalidTargetAction),
		errors.Is(err, rule.ErrInvalidRuleType),
		errors.Is(err, rule.ErrTypeSettingMismatch):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrRecordNotFound),
		errors.Is(err, correction.ErrCorrectionNotFound),
		errors.Is(err, rule.ErrRuleNotFound):
		return http.StatusNotFound
	case errors.Is(err, attendance.ErrDuplicateRecord),
		errors.Is(err, correction.ErrAlreadyExists),
		errors.Is(err, correction.ErrApproveNotPending),
		errors.Is(err, correction.ErrRejectNotPending),
		errors.Is(err, correction.ErrCancelNotPending),
		errors.Is(err, correction.ErrResubmitNotRejected),
		errors.Is(err, correction.ErrNoRequestedEvent),
		errors.As(err, &invalidState),
		errors.As(err, &clockInWindow),
		errors.As(err, &clockOutWindow):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}
