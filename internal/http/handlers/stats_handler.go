package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pvcommunity/internal/service"
)

// NewStatsHandler returns GET /api/stats handler.
func NewStatsHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.GetStats(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// NewTotalsHandler returns GET /api/statistics/global/totals handler.
func NewTotalsHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.GetTotals(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// NewRegionenHandler returns GET /api/stats/regionen handler.
func NewRegionenHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.GetRegionen(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"regionen": result,
		})
	}
}
