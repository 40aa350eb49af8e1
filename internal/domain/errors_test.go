package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Run("default messages", func(t *testing.T) {
		cases := map[ErrorKind]string{
			InvalidCustomer:         "Invalid customer ID",
			NoProductsSelected:      "No valid products selected",
			InvalidProductReference: "One or more invalid product IDs",
			EmailExists:             "Email already exists",
			InvalidPhoneFormat:      "Invalid phone format",
			PriceNotPositive:        "Price must be positive",
			StockNegative:           "Stock cannot be negative",
		}
		for kind, msg := range cases {
			assert.EqualError(t, NewValidationError(kind), msg)
		}
	})

	t.Run("errors.Is by kind", func(t *testing.T) {
		err := fmt.Errorf("create: %w", NewValidationError(EmailExists))
		assert.True(t, errors.Is(err, &ValidationError{Kind: EmailExists}))
		assert.True(t, errors.Is(err, &ValidationError{}))
		assert.False(t, errors.Is(err, &ValidationError{Kind: InvalidPhoneFormat}))
	})

	t.Run("KindOf", func(t *testing.T) {
		kind, ok := KindOf(fmt.Errorf("wrapped: %w", NewValidationError(StockNegative)))
		assert.True(t, ok)
		assert.Equal(t, StockNegative, kind)

		_, ok = KindOf(errors.New("boom"))
		assert.False(t, ok)
		assert.False(t, IsValidationError(ErrNotFound))
		assert.True(t, IsKind(NewValidationError(NameRequired), NameRequired))
	})

	t.Run("aggregation failure keeps reason", func(t *testing.T) {
		err := NewAggregationError(errors.New("connection refused"))
		assert.EqualError(t, err, "ERROR generating report: connection refused")
		assert.True(t, IsKind(err, AggregationFailure))
	})

	t.Run("unknown kind message", func(t *testing.T) {
		assert.Equal(t, "Whatever", ErrorKind("Whatever").Message())
	})
}
