package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talkincode/toughcrm/internal/domain"
)

// Pagination selects a page of a listing. A zero PageSize returns every row.
type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) scope(db *gorm.DB) *gorm.DB {
	if p.PageSize <= 0 {
		return db
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * p.PageSize).Limit(p.PageSize)
}

// OrderFilter narrows an order listing
type OrderFilter struct {
	OrderDateGte *time.Time
	CustomerID   int64
	Pagination
}

func (f OrderFilter) where(db *gorm.DB) *gorm.DB {
	if f.OrderDateGte != nil {
		db = db.Where("order_date >= ?", *f.OrderDateGte)
	}
	if f.CustomerID != 0 {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	return db
}

// Repository is the data access capability used by the CRM service
type Repository interface {
	EmailChecker

	// GetCustomer retrieves a customer by ID
	GetCustomer(ctx context.Context, id int64) (*domain.Customer, error)

	// CreateCustomer inserts a customer, a unique index violation is reported as EmailExists
	CreateCustomer(ctx context.Context, customer *domain.Customer) error

	ListCustomers(ctx context.Context, page Pagination) ([]domain.Customer, error)
	CountCustomers(ctx context.Context) (int64, error)

	// GetProduct retrieves a product by ID
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)

	// GetProducts returns the existing products among ids ordered by id
	GetProducts(ctx context.Context, ids []int64) ([]domain.Product, error)

	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	ListProducts(ctx context.Context, page Pagination) ([]domain.Product, error)
	CountProducts(ctx context.Context) (int64, error)

	// LowStockProducts returns products whose stock is strictly below threshold
	LowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error)

	// IncrementStock adds amount to the stock of every listed product
	IncrementStock(ctx context.Context, ids []int64, amount int) error

	// CreateOrder inserts the order and its product associations, products must already exist
	CreateOrder(ctx context.Context, order *domain.Order) error

	// GetOrder retrieves an order with customer and products preloaded
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)

	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	CountOrders(ctx context.Context, filter OrderFilter) (int64, error)

	// OrderTotals returns the total amount of every order
	OrderTotals(ctx context.Context) ([]decimal.Decimal, error)

	// Transaction runs fn against a repository bound to a single store transaction.
	// Returning an error from fn rolls back every write made through it.
	Transaction(ctx context.Context, fn func(repo Repository) error) error
}

// GormRepository is the GORM implementation of Repository
type GormRepository struct {
	db   *gorm.DB
	inTx bool
}

var _ Repository = (*GormRepository)(nil)

// NewGormRepository creates a new GORM-based repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(domain.ErrNotFound, what)
	}
	return pkgerrors.Wrap(err, what)
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

func (r *GormRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "check customer email")
	}
	return count > 0, nil
}

func (r *GormRepository) GetCustomer(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, notFound(err, "get customer")
	}
	return &customer, nil
}

func (r *GormRepository) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	err := r.db.WithContext(ctx).Create(customer).Error
	if err == nil {
		return nil
	}
	if isDuplicateKey(err) {
		return domain.NewValidationError(domain.EmailExists)
	}
	return pkgerrors.Wrap(err, "create customer")
}

func (r *GormRepository) ListCustomers(ctx context.Context, page Pagination) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := r.db.WithContext(ctx).Scopes(page.scope).Order("id ASC").Find(&customers).Error
	return customers, pkgerrors.Wrap(err, "list customers")
}

func (r *GormRepository) CountCustomers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Customer{}).Count(&count).Error
	return count, pkgerrors.Wrap(err, "count customers")
}

func (r *GormRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, notFound(err, "get product")
	}
	return &product, nil
}

func (r *GormRepository) GetProducts(ctx context.Context, ids []int64) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	query := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC")
	// Prices must not change under an order being created
	if r.inTx && r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "SHARE"})
	}
	var products []domain.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "get products")
	}
	return products, nil
}

func (r *GormRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	return pkgerrors.Wrap(r.db.WithContext(ctx).Create(product).Error, "create product")
}

func (r *GormRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return pkgerrors.Wrap(r.db.WithContext(ctx).Save(product).Error, "update product")
}

func (r *GormRepository) ListProducts(ctx context.Context, page Pagination) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Scopes(page.scope).Order("id ASC").Find(&products).Error
	return products, pkgerrors.Wrap(err, "list products")
}

func (r *GormRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&count).Error
	return count, pkgerrors.Wrap(err, "count products")
}

func (r *GormRepository) LowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).
		Where("stock < ?", threshold).
		Order("id ASC").
		Find(&products).Error
	return products, pkgerrors.Wrap(err, "query low stock products")
}

func (r *GormRepository) IncrementStock(ctx context.Context, ids []int64, amount int) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", amount),
			"updated_at": time.Now(),
		}).Error
	return pkgerrors.Wrap(err, "increment stock")
}

func (r *GormRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	// Associations only: the referenced products are never upserted
	err := r.db.WithContext(ctx).Omit("Customer", "Products.*").Create(order).Error
	return pkgerrors.Wrap(err, "create order")
}

func (r *GormRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&order, id).Error
	if err != nil {
		return nil, notFound(err, "get order")
	}
	return &order, nil
}

func (r *GormRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Scopes(filter.where, filter.Pagination.scope).
		Preload("Customer").
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("order_date DESC").
		Order("id ASC").
		Find(&orders).Error
	return orders, pkgerrors.Wrap(err, "list orders")
}

func (r *GormRepository) CountOrders(ctx context.Context, filter OrderFilter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Scopes(filter.where).Count(&count).Error
	return count, pkgerrors.Wrap(err, "count orders")
}

func (r *GormRepository) OrderTotals(ctx context.Context) ([]decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Pluck("total_amount", &totals).Error
	return totals, pkgerrors.Wrap(err, "query order totals")
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx, inTx: true})
	})
}
