package domain

import "errors"

// Domain-level errors
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCurrencyNotFound = errors.New("currency not found")

	// ErrConstraintViolation is returned when the store rejects a write
	// because of a uniqueness, foreign-key or not-null rule.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidInput is returned for values that fail validation or that
	// the store cannot represent.
	ErrInvalidInput = errors.New("invalid input")

	ErrNoFieldsSupplied = errors.New("no fields supplied")
)
