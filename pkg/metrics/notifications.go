package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// NotificationMetrics counts per-recipient send outcomes.
type NotificationMetrics struct {
	sends    *prometheus.CounterVec
	attempts *prometheus.HistogramVec
}

// NewNotificationMetrics registers the notification metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	sends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_send_total",
		Help: "Notification sends per recipient by event and outcome.",
	}, []string{"event", "outcome"})
	attempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_send_attempts",
		Help:    "Transport attempts used per recipient send.",
		Buckets: []float64{1, 2, 3, 4, 5},
	}, []string{"event"})
	reg.MustRegister(sends, attempts)
	return &NotificationMetrics{sends: sends, attempts: attempts}
}

// ObserveSend records the outcome of one recipient send and how many attempts it took.
func (n *NotificationMetrics) ObserveSend(event string, sent bool, attempts int) {
	if n == nil || n.sends == nil {
		return
	}
	outcome := OutcomeFailed
	if sent {
		outcome = OutcomeSent
	}
	event = normalizeLabel(event)
	n.sends.WithLabelValues(event, outcome).Inc()
	n.attempts.WithLabelValues(event).Observe(float64(attempts))
}
