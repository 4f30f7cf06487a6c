package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pvcommunity/internal/service"
)

// NewTrendsHandler returns GET /api/trends/{period} handler.
func NewTrendsHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.GetTrends(r.Context(), r.PathValue("period"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// NewDegradationHandler returns GET /api/trends/degradation handler.
func NewDegradationHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.GetDegradation(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
