// Package metrics exposes Prometheus counters for the harvest
// pipeline. Registration happens at package load via promauto; the
// optional debug listener is started from main when configured.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts outbound API requests by method and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docharvest_requests_total",
			Help: "Total number of API requests issued.",
		},
		[]string{"method", "outcome"}, // outcome: success, http_error, transport_error
	)

	// CacheHits counts requests answered from the request cache
	// without a network call.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docharvest_request_cache_hits_total",
			Help: "Requests served from the URL+body request cache.",
		},
	)

	// FanoutTasks counts scheduler fan-out tasks by resource and outcome.
	FanoutTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docharvest_fanout_tasks_total",
			Help: "Fan-out fetch tasks executed by the scheduler.",
		},
		[]string{"resource", "outcome"},
	)
)

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

// RequestOutcome labels for RequestsTotal.
const (
	OutcomeSuccess        = "success"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)
