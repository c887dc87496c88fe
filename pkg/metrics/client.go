package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records API request latencies and store sync outcomes.
type ClientMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestFailure  *prometheus.CounterVec
	syncSuccess     *prometheus.CounterVec
	syncFailure     *prometheus.CounterVec
}

// NewClientMetrics registers the client metrics on the provided registerer.
// A nil registerer yields a no-op collector.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of commerce API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})
	requestFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_request_failure",
		Help: "Commerce API requests that failed at the transport layer.",
	}, []string{"endpoint"})
	syncSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sync_success",
		Help: "Successful store synchronizations.",
	}, []string{"store"})
	syncFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sync_failure",
		Help: "Failed store synchronizations.",
	}, []string{"store"})
	reg.MustRegister(requestDuration, requestFailure, syncSuccess, syncFailure)
	return &ClientMetrics{
		requestDuration: requestDuration,
		requestFailure:  requestFailure,
		syncSuccess:     syncSuccess,
		syncFailure:     syncFailure,
	}
}

// ObserveRequest records the duration for the named endpoint.
func (c *ClientMetrics) ObserveRequest(endpoint, method string, duration time.Duration) {
	if c == nil || c.requestDuration == nil {
		return
	}
	c.requestDuration.WithLabelValues(normalizeLabel(endpoint), method).Observe(duration.Seconds())
}

// IncRequestFailure increments the transport failure counter for the endpoint.
func (c *ClientMetrics) IncRequestFailure(endpoint string) {
	if c == nil || c.requestFailure == nil {
		return
	}
	c.requestFailure.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncSyncSuccess increments the sync success counter for the named store.
func (c *ClientMetrics) IncSyncSuccess(store string) {
	if c == nil || c.syncSuccess == nil {
		return
	}
	c.syncSuccess.WithLabelValues(normalizeLabel(store)).Inc()
}

// IncSyncFailure increments the sync failure counter for the named store.
func (c *ClientMetrics) IncSyncFailure(store string) {
	if c == nil || c.syncFailure == nil {
		return
	}
	c.syncFailure.WithLabelValues(normalizeLabel(store)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
