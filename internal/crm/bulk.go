package crm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/events"
)

// BulkResult partitions a batch: every input yields exactly one customer or one error.
type BulkResult struct {
	Customers []domain.Customer `json:"customers"`
	Errors    []string          `json:"errors"`
}

// BulkCreateCustomers creates each input in its own transaction. A failed item is reported as
// "Item <index>: <reason>" and never affects the other items.
func (s *Service) BulkCreateCustomers(ctx context.Context, inputs []CustomerInput) *BulkResult {
	result := &BulkResult{
		Customers: make([]domain.Customer, 0, len(inputs)),
		Errors:    make([]string, 0),
	}
	for idx, in := range inputs {
		var customer *domain.Customer
		err := s.repo.Transaction(ctx, func(repo Repository) error {
			var err error
			customer, err = s.createCustomer(ctx, repo, in)
			return err
		})
		if err != nil {
			if !domain.IsValidationError(err) {
				zap.L().Error("bulk create customer failed",
					zap.Int("item", idx),
					zap.Error(err),
					zap.String("namespace", "crm"))
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Item %d: %s", idx, err.Error()))
			continue
		}
		result.Customers = append(result.Customers, *customer)
		s.publisher.Publish(events.TopicCustomerCreated, customer)
	}
	return result
}
