package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"pvcommunity/internal/models"
	"pvcommunity/internal/service"
)

const shareTokenHeader = "X-Share-Token"

// NewSubmitHandler returns POST /api/submit handler.
func NewSubmitHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		resp, err := svc.Submit(r.Context(), &req, clientIP(r))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

// NewDeleteHandler returns DELETE /api/submit/{hash} handler.
func NewDeleteHandler(svc *service.CommunityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := r.PathValue("hash")
		if hash == "" {
			writeError(w, http.StatusBadRequest, "anlage hash fehlt")
			return
		}

		resp, err := svc.Delete(r.Context(), hash, r.Header.Get(shareTokenHeader))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
