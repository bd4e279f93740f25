package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kintai/internal/core/attendance"
	"kintai/internal/core/correction"
	"kintai/internal/core/rule"
)

// NewRouter はアプリケーションの全ルートを束ねた chi ルーターを構築します。
func NewRouter(logger *slog.Logger, recordUC attendance.UseCase, correctionUC correction.UseCase, ruleUC rule.UseCase) http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(logger))
	r.Use(RequestID)
	r.Use(Logging(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	NewAttendanceRecordHandler(recordUC, logger).Register(r)
	NewAttendanceCorrectionHandler(correctionUC, logger).Register(r)
	NewAttendanceRuleHandler(ruleUC, logger).Register(r)

	return r
}
