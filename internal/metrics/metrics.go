package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	transitions     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	slotsListed     prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutora",
		Name:      "appointment_transitions_total",
		Help:      "Appointment lifecycle operations by action and outcome.",
	}, []string{"action", "outcome"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tutora",
		Name:      "grpc_request_duration_seconds",
		Help:      "Duration of unary gRPC requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "code"})

	slotsListed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tutora",
		Name:      "free_slots_listed_total",
		Help:      "Free slots returned to callers.",
	})

	registry.MustRegister(
		transitions,
		requestDuration,
		slotsListed,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		transitions:     transitions,
		requestDuration: requestDuration,
		slotsListed:     slotsListed,
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveTransition counts one lifecycle operation. A nil receiver is a no-op.
func (m *Metrics) ObserveTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveSlotsListed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.slotsListed.Add(float64(n))
}

// UnaryServerInterceptor records the latency and status code of every unary
// call.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if m != nil {
			m.requestDuration.
				WithLabelValues(info.FullMethod, status.Code(err).String()).
				Observe(time.Since(start).Seconds())
		}
		return resp, err
	}
}
