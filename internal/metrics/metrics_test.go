package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoginCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Login("vatsim", OutcomeSuccess)
	m.Login("vatsim", OutcomeSuccess)
	m.Login("vatsim", OutcomeState)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("vatsim", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("vatsim", OutcomeState)))
}

func TestPingHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObservePing(120 * time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(m.PingDuration))
}
