package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pvcommunity/internal/community"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the error taxonomy onto status codes. Anything
// outside the taxonomy is a masked 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, community.ErrNotFound):
		writeError(w, http.StatusNotFound, "anlage nicht gefunden")
	case errors.Is(err, community.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, "ungültiger zeitraum")
	case errors.Is(err, community.ErrValidation), errors.Is(err, community.ErrUnknownRegion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, community.ErrRateLimited), errors.Is(err, community.ErrTooManyUpdates):
		writeError(w, http.StatusTooManyRequests, "zu viele anfragen, bitte später erneut versuchen")
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "interner fehler")
	}
}

// clientIP favors the proxy header, falling back to the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
