package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopBeforeInit(t *testing.T) {
	Inc("not_initialized")
	points, err := Points("not_initialized", 0, time.Now().Unix()+1)
	require.NoError(t, err)
	assert.Empty(t, points)
	assert.Zero(t, Sum("not_initialized", time.Minute))
}

func TestCountersAndGauges(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	t.Cleanup(func() { _ = Close() })

	Inc(CrmOrdersCreated)
	Inc(CrmOrdersCreated)
	Add(CrmOrderAmount, 12.5)
	SetGauge(CrmProcessMemory, 64)

	assert.InDelta(t, 2, Sum(CrmOrdersCreated, time.Minute), 0.001)
	assert.InDelta(t, 12.5, Sum(CrmOrderAmount, time.Minute), 0.001)

	now := time.Now().Unix()
	points, err := Points(CrmProcessMemory, now-60, now+1)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, float64(64), points[0].Value)

	points, err = Points("unknown_metric", now-60, now+1)
	require.NoError(t, err)
	assert.Empty(t, points)
}
