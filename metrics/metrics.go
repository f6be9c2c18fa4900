package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Tool lifecycle events counted by tool_events_total.
const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventBorrowed = "borrowed"
	EventReturned = "returned"
	EventOverdue  = "overdue"
)

// Metrics holds the HTTP and domain collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	events   *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tool_events_total",
		Help: "Tool lifecycle events.",
	}, []string{"event"})
	reg.MustRegister(requests, duration, events)
	return &Metrics{requests: requests, duration: duration, events: events}
}

func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) IncEvent(event string) { m.AddEvents(event, 1) }

func (m *Metrics) AddEvents(event string, n int) {
	if m == nil || m.events == nil || n <= 0 {
		return
	}
	m.events.WithLabelValues(normalizeLabel(event)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
