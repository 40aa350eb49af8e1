package crm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/toughcrm/internal/crm/crmtest"
	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/common"
)

// Two writers that both passed the email pre-check race on the unique index.
func TestRepositoryCreateCustomerDuplicateEmail(t *testing.T) {
	repo := NewGormRepository(crmtest.NewDB(t))
	ctx := context.Background()

	first := &domain.Customer{ID: common.UUIDint64(), Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.CreateCustomer(ctx, first))

	second := &domain.Customer{ID: common.UUIDint64(), Name: "Alicia", Email: "alice@example.com"}
	err := repo.CreateCustomer(ctx, second)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.EmailExists))
	assert.EqualError(t, err, "Email already exists")

	n, err := repo.CountCustomers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRepositoryGetCustomerNotFound(t *testing.T) {
	repo := NewGormRepository(crmtest.NewDB(t))
	_, err := repo.GetCustomer(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
