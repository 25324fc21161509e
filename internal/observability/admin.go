package observability

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerLister reports registered web handler URLs in lookup order.
type HandlerLister interface {
	URLs() []string
}

// NewAdminRouter serves /metrics, /healthz and /handlers.
func NewAdminRouter(handlers HandlerLister) http.Handler {
	RegisterMetrics()
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/handlers", func(w http.ResponseWriter, _ *http.Request) {
		urls := handlers.URLs()
		if urls == nil {
			urls = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"handlers": urls})
	})
	return r
}
