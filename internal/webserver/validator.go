package webserver

import (
	"github.com/go-playground/validator/v10"

	"github.com/talkincode/toughcrm/internal/crm"
)

// Validator adapts go-playground/validator to echo
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the request validator with the crmphone tag registered
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("crmphone", func(fl validator.FieldLevel) bool {
		return crm.ValidatePhone(fl.Field().String())
	})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
