package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repository lookups when the record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrorKind identifies a validation failure of a CRM operation.
type ErrorKind string

const (
	InvalidCustomer         ErrorKind = "InvalidCustomer"
	NoProductsSelected      ErrorKind = "NoProductsSelected"
	InvalidProductReference ErrorKind = "InvalidProductReference"
	EmailExists             ErrorKind = "EmailExists"
	InvalidPhoneFormat      ErrorKind = "InvalidPhoneFormat"
	PriceNotPositive        ErrorKind = "PriceNotPositive"
	StockNegative           ErrorKind = "StockNegative"
	NameRequired            ErrorKind = "NameRequired"
	EmailRequired           ErrorKind = "EmailRequired"
	InvalidOrderDate        ErrorKind = "InvalidOrderDate"
	AggregationFailure      ErrorKind = "AggregationFailure"
)

var kindMessages = map[ErrorKind]string{
	InvalidCustomer:         "Invalid customer ID",
	NoProductsSelected:      "No valid products selected",
	InvalidProductReference: "One or more invalid product IDs",
	EmailExists:             "Email already exists",
	InvalidPhoneFormat:      "Invalid phone format",
	PriceNotPositive:        "Price must be positive",
	StockNegative:           "Stock cannot be negative",
	NameRequired:            "Name is required",
	EmailRequired:           "Email is required",
	InvalidOrderDate:        "Invalid order date",
	AggregationFailure:      "ERROR generating report",
}

// Message returns the user facing text of the kind.
func (k ErrorKind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return string(k)
}

// ValidationError is the single error carried by a failed CRM mutation.
type ValidationError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	return e.Message
}

// Is matches another ValidationError of the same kind, or any ValidationError when the target kind is empty.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

// NewValidationError creates a ValidationError with the default message of kind.
func NewValidationError(kind ErrorKind) error {
	return &ValidationError{Kind: kind, Message: kind.Message()}
}

// NewAggregationError reports a failed report aggregation with its reason.
func NewAggregationError(reason error) error {
	return &ValidationError{
		Kind:    AggregationFailure,
		Message: fmt.Sprintf("%s: %v", AggregationFailure.Message(), reason),
	}
}

// KindOf extracts the ErrorKind carried by err.
func KindOf(err error) (ErrorKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	_, ok := KindOf(err)
	return ok
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
