package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestIncrementCompany(t *testing.T) {
	before := counterValue(t, CompaniesProcessed.WithLabelValues("persisted"))
	IncrementCompany("persisted")
	IncrementCompany("persisted")
	assert.Equal(t, before+2, counterValue(t, CompaniesProcessed.WithLabelValues("persisted")))
}

func TestIncrementCapabilityCall(t *testing.T) {
	before := counterValue(t, CapabilityCalls.WithLabelValues("gemini", "error"))
	IncrementCapabilityCall("gemini", "error")
	assert.Equal(t, before+1, counterValue(t, CapabilityCalls.WithLabelValues("gemini", "error")))
}

func TestRecordFetchDuration(t *testing.T) {
	RecordFetchDuration("acme.io", "ok", 120*time.Millisecond)

	h, ok := FetchDuration.WithLabelValues("acme.io", "ok").(prometheus.Histogram)
	require.True(t, ok)
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}
