package repository

import (
	"fmt"
	"unicode/utf8"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// CheckProductColumns applies the products table's column rules. Stores that
// lack a schema call it before every write.
func CheckProductColumns(p *domain.Product) error {
	if utf8.RuneCountInString(p.Name) > domain.MaxProductNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", domain.ErrInvalidInput, domain.MaxProductNameLength)
	}
	return domain.CheckPriceRange(p.Price)
}

// CheckCurrencyColumns applies the currencies table's column rules.
func CheckCurrencyColumns(c *domain.Currency) error {
	if c.ISOCode == "" {
		return fmt.Errorf("%w: iso_code is required", domain.ErrConstraintViolation)
	}
	if utf8.RuneCountInString(c.ISOCode) > domain.ISOCodeLength {
		return fmt.Errorf("%w: iso_code exceeds %d characters", domain.ErrInvalidInput, domain.ISOCodeLength)
	}
	if c.Description != nil && utf8.RuneCountInString(*c.Description) > domain.MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", domain.ErrInvalidInput, domain.MaxDescriptionLength)
	}
	if c.Symbol != nil && utf8.RuneCountInString(*c.Symbol) > domain.MaxSymbolLength {
		return fmt.Errorf("%w: symbol exceeds %d characters", domain.ErrInvalidInput, domain.MaxSymbolLength)
	}
	return nil
}
