package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/convention/pkg/metrics"
)

var metricsHandler = promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})

// HandleHealth serves the Prometheus registry.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	metricsHandler.ServeHTTP(w, r)
}
