package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := New(reg)
	require.NoError(t, err)

	rec.ObserveFetch("ventas", 20*time.Millisecond, nil)
	rec.ObserveFetch("ventas", 30*time.Millisecond, errors.New("timeout"))
	rec.ObserveSnapshot(OutcomePartial)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.fetchFailures.WithLabelValues("ventas")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.snapshots.WithLabelValues(OutcomePartial)))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.snapshots.WithLabelValues(OutcomeFailed)))
}

func TestRecorderDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilRecorder(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.ObserveFetch("animales", time.Second, nil)
		rec.ObserveSnapshot(OutcomeComplete)
	})
}
