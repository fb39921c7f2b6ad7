package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics instruments inbound HTTP traffic.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fbrgate_http_requests_total",
			Help: "Count of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fbrgate_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// GinMiddleware records request counts and latency.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Metrics exposes application-level instruments for the invoicing domain.
type Metrics struct {
	gatewayRequests   *prometheus.CounterVec
	gatewayDuration   *prometheus.HistogramVec
	tokenAcquisitions *prometheus.CounterVec
	submissions       *prometheus.CounterVec
	validations       *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		gatewayRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fbrgate_gateway_requests_total",
			Help: "Outbound FBR gateway calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		gatewayDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fbrgate_gateway_request_duration_seconds",
			Help:    "Outbound FBR gateway call latency by operation.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		tokenAcquisitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fbrgate_token_acquisitions_total",
			Help: "Gateway token acquisitions by outcome.",
		}, []string{"outcome"}),
		submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fbrgate_invoice_submissions_total",
			Help: "Invoice submissions by outcome.",
		}, []string{"outcome"}),
		validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fbrgate_invoice_validations_total",
			Help: "Invoice gateway validations by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) RecordGatewayRequest(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gatewayRequests.WithLabelValues(operation, outcome).Inc()
	m.gatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (m *Metrics) RecordTokenAcquisition(outcome string) {
	if m == nil {
		return
	}
	m.tokenAcquisitions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordValidation(outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(outcome).Inc()
}
