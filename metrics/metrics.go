// Package metrics exposes the relay's Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "connection_relay"

// Outcomes of a client config request.
const (
	OutcomeConnected           = "connected"
	OutcomeConnectRequest      = "connect_request"
	OutcomeFetchError          = "fetch_error"
	OutcomeCreateError         = "create_error"
	OutcomeDecryptionError     = "decryption_error"
	OutcomeInvalidRecipientKey = "invalid_recipient_key"
	OutcomeError               = "error"
)

var (
	// Registry holds every relay collector plus the Go and process collectors.
	Registry = prometheus.NewRegistry()

	clientConfigRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_config_requests_total",
		Help:      "Client config requests by outcome.",
	}, []string{"outcome"})

	clientConfigDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "client_config_duration_seconds",
		Help:      "Time to resolve and seal a client config, including platform round trips.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		clientConfigRequests,
		clientConfigDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordClientConfig counts one client config request.
func RecordClientConfig(outcome string, duration time.Duration) {
	clientConfigRequests.WithLabelValues(outcome).Inc()
	clientConfigDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ClientConfigCount returns the number of requests recorded for outcome.
func ClientConfigCount(outcome string) float64 {
	var m dto.Metric
	if err := clientConfigRequests.WithLabelValues(outcome).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// MetricsServer serves Registry on /metrics.
type MetricsServer struct {
	srv *http.Server
}

func New(addr string) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry}))

	return &MetricsServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *MetricsServer) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
