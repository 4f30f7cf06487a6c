package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"pvcommunity/internal/service"
)

// NewBenchmarkHandler returns GET /api/benchmark/anlage/{hash} handler.
// Optional query parameters: zeitraum (window selector) and jahr (only
// with zeitraum=jahr).
func NewBenchmarkHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := r.PathValue("hash")
		if hash == "" {
			writeError(w, http.StatusBadRequest, "anlage hash fehlt")
			return
		}

		// Shared links carry a token bound to the hash; a foreign token
		// must not unlock the view.
		if token := r.URL.Query().Get("token"); token != "" {
			if err := svc.ValidateShareToken(token, hash); err != nil {
				writeServiceError(w, logger, err)
				return
			}
		}

		zeitraum := r.URL.Query().Get("zeitraum")
		jahr := 0
		if raw := r.URL.Query().Get("jahr"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "ungültiges jahr")
				return
			}
			jahr = parsed
		}

		result, err := svc.GetBenchmark(r.Context(), hash, zeitraum, jahr)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
