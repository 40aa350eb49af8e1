package events

import (
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/metrics"
)

// BindMetrics records CRM activity counters from bus events.
func BindMetrics(b *Bus) error {
	if err := b.SubscribeAsync(TopicCustomerCreated, func(c *domain.Customer) {
		metrics.Inc(metrics.CrmCustomersCreated)
	}); err != nil {
		return err
	}
	if err := b.SubscribeAsync(TopicProductCreated, func(p *domain.Product) {
		metrics.Inc(metrics.CrmProductsCreated)
	}); err != nil {
		return err
	}
	if err := b.SubscribeAsync(TopicOrderCreated, func(o *domain.Order) {
		metrics.Inc(metrics.CrmOrdersCreated)
		metrics.Add(metrics.CrmOrderAmount, o.TotalAmount.InexactFloat64())
	}); err != nil {
		return err
	}
	return b.SubscribeAsync(TopicStockReplenished, func(products []domain.Product) {
		metrics.Add(metrics.CrmRestockUpdated, float64(len(products)))
	})
}
