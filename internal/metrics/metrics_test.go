package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/bft-labs/pulseship/internal/domain"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.FrameProcessed(72)
	m.FrameProcessed(73)
	m.SinkPush(nil)
	m.SinkPush(errors.New("down"))
	m.ScanAttempt("timeout")
	m.ScanAttempt("connected")
	m.StateChanged(domain.StateStreaming)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesProcessed))
	assert.Equal(t, 73.0, testutil.ToFloat64(m.HeartRate))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkPushes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SinkPushes.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScanAttempts.WithLabelValues("timeout")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionState))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.FrameProcessed(1)
	m.SinkPush(nil)
	m.ScanAttempt("error")
	m.StateChanged(domain.StateNone)
}
