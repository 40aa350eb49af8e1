package crm

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/talkincode/toughcrm/internal/domain"
)

// Accepts "+" followed by 10 to 15 digits, or the DDD-DDD-DDDD local form.
var phoneRegexp = regexp.MustCompile(`^(\+\d{10,15}|\d{3}-\d{3}-\d{4})$`)

// ValidatePhone reports whether phone is acceptable. The field is optional, so empty is valid.
func ValidatePhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phoneRegexp.MatchString(phone)
}

// EmailChecker is the capability needed to check email uniqueness.
type EmailChecker interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ValidateEmailUnique returns true iff no existing customer has exactly this email.
func ValidateEmailUnique(ctx context.Context, checker EmailChecker, email string) (bool, error) {
	exists, err := checker.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// ValidateProductInput checks the creation rules of a product, price first.
// The price is checked at the two decimal places it is stored with.
func ValidateProductInput(price decimal.Decimal, stock int) error {
	if !price.Round(2).IsPositive() {
		return domain.NewValidationError(domain.PriceNotPositive)
	}
	if stock < 0 {
		return domain.NewValidationError(domain.StockNegative)
	}
	return nil
}

// CustomerInput holds the fields of a customer creation request.
type CustomerInput struct {
	Name  string `json:"name" csv:"name" mapstructure:"name" validate:"required,max=200"`
	Email string `json:"email" csv:"email" mapstructure:"email" validate:"required,max=254"`
	Phone string `json:"phone" csv:"phone" mapstructure:"phone" validate:"omitempty,crmphone"`
}

func (in CustomerInput) normalize() CustomerInput {
	return CustomerInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
}

// ValidateCustomerInput applies required fields, phone format and email uniqueness, in that order.
func ValidateCustomerInput(ctx context.Context, checker EmailChecker, in CustomerInput) error {
	if in.Name == "" {
		return domain.NewValidationError(domain.NameRequired)
	}
	if in.Email == "" {
		return domain.NewValidationError(domain.EmailRequired)
	}
	if !ValidatePhone(in.Phone) {
		return domain.NewValidationError(domain.InvalidPhoneFormat)
	}
	unique, err := ValidateEmailUnique(ctx, checker, in.Email)
	if err != nil {
		return err
	}
	if !unique {
		return domain.NewValidationError(domain.EmailExists)
	}
	return nil
}
