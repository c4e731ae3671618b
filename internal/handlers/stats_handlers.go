package handlers

import (
	"net/http"
	"time"

	"activityTracker/internal/logger"
	"activityTracker/internal/metrics"
	"activityTracker/internal/models/stats"

	"go.uber.org/zap"
)

type StatsHandler struct {
	StatsService StatsService
}

func NewStatsHandler(statsService StatsService) StatsHandler {
	return StatsHandler{
		StatsService: statsService,
	}
}

// GetStats - общая сводка по системе без разбивки по людям.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	overview, err := h.StatsService.Overview(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "stats_overview"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithBody(w, http.StatusOK, overview)
}

// GetDashboardStats - агрегаты дашборда. Без userId считает по всей
// команде, с userId - по одному человеку.
func (h *StatsHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")
	metrics.RecordDashboardRequest()

	userID, ok := optionalInt64Param(w, r, "userId")
	if !ok {
		return
	}

	scope := stats.Global()
	if userID != nil {
		scope = stats.Personal(*userID)
	}

	dashboard, err := h.StatsService.Dashboard(r.Context(), scope)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "dashboard"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Дашборд собран",
		zap.Bool("personal", scope.Personal()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dashboard)
}
