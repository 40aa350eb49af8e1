package events

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/metrics"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	var got *domain.Customer
	require.NoError(t, bus.Subscribe(TopicCustomerCreated, func(c *domain.Customer) {
		got = c
	}))
	bus.Publish(TopicCustomerCreated, &domain.Customer{ID: 1, Name: "Alice"})
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)

	// publishing without subscribers is a no-op
	bus.Publish(TopicOrderCreated, &domain.Order{})
}

func TestBindMetrics(t *testing.T) {
	require.NoError(t, metrics.InitMetrics(t.TempDir()))
	t.Cleanup(func() { _ = metrics.Close() })

	bus := NewBus()
	require.NoError(t, BindMetrics(bus))

	bus.Publish(TopicOrderCreated, &domain.Order{TotalAmount: decimal.RequireFromString("10.50")})
	bus.Publish(TopicStockReplenished, []domain.Product{{ID: 1}, {ID: 2}})
	bus.WaitAsync()

	assert.InDelta(t, 1, metrics.Sum(metrics.CrmOrdersCreated, time.Minute), 0.001)
	assert.InDelta(t, 10.5, metrics.Sum(metrics.CrmOrderAmount, time.Minute), 0.001)
	assert.InDelta(t, 2, metrics.Sum(metrics.CrmRestockUpdated, time.Minute), 0.001)
}
