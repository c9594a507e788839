package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes регистрирует маршруты API в mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	started := time.Now()

	route := func(pattern string, fn http.HandlerFunc) {
		chain := Chain(
			Recovery(h.logger),
			Logging(h.logger),
			CountRequests(h.requests, pattern),
		)
		mux.Handle(pattern, chain(fn))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(started).Round(time.Second))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	route("GET /api/v1/manifests", h.ListManifests)
	route("GET /api/v1/manifests/{dag_id}", h.GetManifest)
	route("GET /api/v1/announcements", h.ListAnnouncements)
	route("GET /api/v1/preview", h.Preview)
}
