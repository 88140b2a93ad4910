package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewNotificationMetrics(reg)
	m.ObserveSend("order_placed", true, 1)
	m.ObserveSend("order_placed", true, 2)
	m.ObserveSend("order_placed", false, 3)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	mf := findMetricFamily(mfs, "notification_send_total")
	require.NotNil(t, mf)
	var sent, failed float64
	for _, metric := range mf.GetMetric() {
		switch {
		case matchesLabel(metric.GetLabel(), "outcome", OutcomeSent):
			sent = metric.GetCounter().GetValue()
		case matchesLabel(metric.GetLabel(), "outcome", OutcomeFailed):
			failed = metric.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, sent)
	assert.Equal(t, 1.0, failed)

	sum, err := fetchHistogramSum(mfs, "notification_send_attempts", "event", "order_placed")
	require.NoError(t, err)
	assert.Equal(t, 6.0, sum)
}

func TestNilNotificationMetricsIsSafe(t *testing.T) {
	var m *NotificationMetrics
	assert.NotPanics(t, func() { m.ObserveSend("x", true, 1) })
	assert.NotPanics(t, func() { NewNotificationMetrics(nil).ObserveSend("x", false, 3) })
}
