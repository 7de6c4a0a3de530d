package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/exercisetracker/internal/observability"
)

// NewRouter registers the API routes plus /metrics and instruments every
// matched route. Extra middleware such as authentication runs inside the
// instrumentation, so rejected requests are still counted.
func NewRouter(h *Handler, mws ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(observability.InstrumentHandler)
	r.Use(mws...)
	h.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}
