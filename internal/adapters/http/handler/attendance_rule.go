package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kintai/internal/core/rule"
)

// AttendanceRuleHandler は勤怠ルールエンドポイントのハンドラです。
type AttendanceRuleHandler struct {
	usecase rule.UseCase
	logger  *slog.Logger
}

// NewAttendanceRuleHandler は AttendanceRuleHandler を生成します。
func NewAttendanceRuleHandler(usecase rule.UseCase, logger *slog.Logger) *AttendanceRuleHandler {
	return &AttendanceRuleHandler{usecase: usecase, logger: logger}
}

// Register は勤怠ルールのルートを登録します。
func (h *AttendanceRuleHandler) Register(r chi.Router) {
	r.Route("/attendance-rule", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{ruleID}", h.get)
		r.Put("/{ruleID}", h.update)
		r.Delete("/{ruleID}", h.delete)
	})
}

type ruleSettingPayload struct {
	Type                 string `json:"type"`
	LatestClockInTime    string `json:"latestClockInTime,omitempty"`
	EarliestClockOutTime string `json:"earliestClockOutTime,omitempty"`
}

type ruleRequest struct {
	Targets []string           `json:"targets"`
	Type    string             `json:"type"`
	Setting ruleSettingPayload `json:"setting"`
	Enabled bool               `json:"enabled"`
}

type ruleResponse struct {
	ID      string             `json:"id"`
	Targets []string           `json:"targets"`
	Type    string             `json:"type"`
	Setting ruleSettingPayload `json:"setting"`
	Enabled bool               `json:"enabled"`
}

func (h *AttendanceRuleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "リクエストボディが不正です")
		return
	}

	created, err := h.usecase.CreateRule(r.Context(), rule.CreateRuleInput{
		Targets: toTargetActions(req.Targets),
		Type:    rule.Type(req.Type),
		Setting: toSettingInput(req.Setting),
		Enabled: req.Enabled,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toRuleResponse(created))
}

func (h *AttendanceRuleHandler) get(w http.ResponseWriter, r *http.Request) {
	found, err := h.usecase.GetRule(r.Context(), rule.GetRuleInput{RuleID: chi.URLParam(r, "ruleID")})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toRuleResponse(found))
}

func (h *AttendanceRuleHandler) update(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "リクエストボディが不正です")
		return
	}

	updated, err := h.usecase.UpdateRule(r.Context(), rule.UpdateRuleInput{
		RuleID:  chi.URLParam(r, "ruleID"),
		Targets: toTargetActions(req.Targets),
		Type:    rule.Type(req.Type),
		Setting: toSettingInput(req.Setting),
		Enabled: req.Enabled,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toRuleResponse(updated))
}

func (h *AttendanceRuleHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.DeleteRule(r.Context(), rule.DeleteRuleInput{RuleID: chi.URLParam(r, "ruleID")}); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toTargetActions(names []string) []rule.TargetAction {
	targets := make([]rule.TargetAction, 0, len(names))
	for _, name := range names {
		targets = append(targets, rule.TargetAction(name))
	}
	return targets
}

func toSettingInput(payload ruleSettingPayload) rule.SettingInput {
	return rule.SettingInput{
		Type:                 rule.Type(payload.Type),
		LatestClockInTime:    payload.LatestClockInTime,
		EarliestClockOutTime: payload.EarliestClockOutTime,
	}
}

func toRuleResponse(r *rule.Rule) ruleResponse {
	targets := make([]string, 0, len(r.Targets()))
	for _, t := range r.Targets() {
		targets = append(targets, string(t))
	}

	setting := ruleSettingPayload{Type: string(r.Type())}
	switch typed := r.Setting().(type) {
	case rule.AllowClockInOnlyBeforeTime:
		setting.LatestClockInTime = typed.LatestClockInTime.String()
	case rule.AllowClockOutOnlyAfterTime:
		setting.EarliestClockOutTime = typed.EarliestClockOutTime.String()
	}

	return ruleResponse{
		ID:      r.ID().String(),
		Targets: targets,
		Type:    string(r.Type()),
		Setting: setting,
		Enabled: r.Enabled(),
	}
}
