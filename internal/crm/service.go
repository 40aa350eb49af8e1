package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/events"
	"github.com/talkincode/toughcrm/pkg/common"
)

// ProductInput holds the fields of a product creation or update request.
type ProductInput struct {
	Name  string          `json:"name" mapstructure:"name" validate:"required,max=200"`
	Price decimal.Decimal `json:"price" mapstructure:"price"`
	Stock int             `json:"stock" mapstructure:"stock"`
}

// OrderInput holds the fields of an order creation request. A nil OrderDate means now.
type OrderInput struct {
	CustomerID int64
	ProductIDs []int64
	OrderDate  *time.Time
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, ...interface{}) {}

// Service implements the CRM mutations on top of a Repository.
type Service struct {
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
}

// NewService creates the CRM service. publisher may be nil.
func NewService(repo Repository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

// Repo returns the underlying repository for read access
func (s *Service) Repo() Repository {
	return s.repo
}

// CreateCustomer validates in and persists a new customer.
func (s *Service) CreateCustomer(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	customer, err := s.createCustomer(ctx, s.repo, in)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(events.TopicCustomerCreated, customer)
	return customer, nil
}

func (s *Service) createCustomer(ctx context.Context, repo Repository, in CustomerInput) (*domain.Customer, error) {
	in = in.normalize()
	if err := ValidateCustomerInput(ctx, repo, in); err != nil {
		return nil, err
	}
	customer := &domain.Customer{
		ID:    common.UUIDint64(),
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}
	if err := repo.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// CreateProduct validates in and persists a new product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError(domain.NameRequired)
	}
	price := in.Price.Round(2)
	if err := ValidateProductInput(price, in.Stock); err != nil {
		return nil, err
	}
	product := &domain.Product{
		ID:    common.UUIDint64(),
		Name:  name,
		Price: price,
		Stock: in.Stock,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	s.publisher.Publish(events.TopicProductCreated, product)
	return product, nil
}

// UpdateProduct applies in to an existing product with the creation rules.
// Orders already placed keep their total amount.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		product.Name = name
	}
	price := in.Price.Round(2)
	if err := ValidateProductInput(price, in.Stock); err != nil {
		return nil, err
	}
	product.Price = price
	product.Stock = in.Stock
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// CreateOrder resolves the customer and products, snapshots the total and persists the order
// in a single transaction. Duplicate product ids are collapsed before validation.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	var order *domain.Order
	err := s.repo.Transaction(ctx, func(repo Repository) error {
		customer, err := repo.GetCustomer(ctx, in.CustomerID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError(domain.InvalidCustomer)
		}
		if err != nil {
			return err
		}

		ids := uniqueIDs(in.ProductIDs)
		products, err := repo.GetProducts(ctx, ids)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return domain.NewValidationError(domain.NoProductsSelected)
		}
		if len(products) < len(ids) {
			return domain.NewValidationError(domain.InvalidProductReference)
		}

		total := decimal.Zero
		for _, p := range products {
			total = total.Add(p.Price)
		}

		orderDate := s.now()
		if in.OrderDate != nil && !in.OrderDate.IsZero() {
			orderDate = *in.OrderDate
		}
		order = &domain.Order{
			ID:          common.UUIDint64(),
			CustomerID:  customer.ID,
			Customer:    *customer,
			Products:    products,
			OrderDate:   orderDate,
			TotalAmount: total,
		}
		return repo.CreateOrder(ctx, order)
	})
	if err != nil {
		if !domain.IsValidationError(err) {
			zap.L().Error("create order failed",
				zap.Int64("customer_id", in.CustomerID),
				zap.Error(err),
				zap.String("namespace", "crm"))
		}
		return nil, err
	}
	s.publisher.Publish(events.TopicOrderCreated, order)
	return order, nil
}

// uniqueIDs removes repeated ids keeping the first occurrence order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
