package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Stats       http.HandlerFunc
	Totals      http.HandlerFunc
	Regionen    http.HandlerFunc
	Benchmark   http.HandlerFunc
	Trends      http.HandlerFunc
	Degradation http.HandlerFunc
	Submit      http.HandlerFunc
	Delete      http.HandlerFunc
	Live        http.HandlerFunc
	Health      http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Stats != nil {
		mux.Handle("/api/stats", method(http.MethodGet, routes.Stats))
	}
	if routes.Totals != nil {
		mux.Handle("/api/statistics/global/totals", method(http.MethodGet, routes.Totals))
	}
	if routes.Regionen != nil {
		mux.Handle("/api/stats/regionen", method(http.MethodGet, routes.Regionen))
	}
	if routes.Benchmark != nil {
		mux.Handle("/api/benchmark/anlage/{hash}", method(http.MethodGet, routes.Benchmark))
	}
	// The literal pattern outranks the wildcard, so "degradation" is never
	// parsed as a period name.
	if routes.Degradation != nil {
		mux.Handle("/api/trends/degradation", method(http.MethodGet, routes.Degradation))
	}
	if routes.Trends != nil {
		mux.Handle("/api/trends/{period}", method(http.MethodGet, routes.Trends))
	}
	if routes.Submit != nil {
		mux.Handle("/api/submit", method(http.MethodPost, routes.Submit))
	}
	if routes.Delete != nil {
		mux.Handle("/api/submit/{hash}", method(http.MethodDelete, routes.Delete))
	}
	if routes.Live != nil {
		mux.Handle("/ws/live", method(http.MethodGet, routes.Live))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
