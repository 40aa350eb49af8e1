package crm

import (
	"context"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/events"
)

const (
	// LowStockThreshold products with stock strictly below this are restocked
	LowStockThreshold = 10
	// RestockAmount is added to each low stock product
	RestockAmount = 10
)

// RestockLowStock adds RestockAmount to every product below LowStockThreshold in one
// transaction and returns the products with their new stock. Nothing is written when no
// product is low.
func (s *Service) RestockLowStock(ctx context.Context) ([]domain.Product, error) {
	var updated []domain.Product
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		low, err := repo.LowStockProducts(ctx, LowStockThreshold)
		if err != nil {
			return err
		}
		if len(low) == 0 {
			updated = []domain.Product{}
			return nil
		}
		ids := make([]int64, 0, len(low))
		for _, p := range low {
			ids = append(ids, p.ID)
		}
		if err := repo.IncrementStock(ctx, ids, RestockAmount); err != nil {
			return err
		}
		updated, err = repo.GetProducts(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(updated) > 0 {
		s.publisher.Publish(events.TopicStockReplenished, updated)
	}
	return updated, nil
}
