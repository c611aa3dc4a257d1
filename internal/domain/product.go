package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// PriceScale is the number of fractional digits a price is rendered with.
	PriceScale = 2

	// StoredPriceScale and MaxPriceIntegerDigits match products.price,
	// NUMERIC(12,4).
	StoredPriceScale      = 4
	MaxPriceIntegerDigits = 8

	// Exponents outside this range are refused before any arithmetic on the
	// value, since rescaling costs grow with the exponent.
	minPriceExponent = -16
)

var maxPrice = decimal.New(1, MaxPriceIntegerDigits)

// ParsePrice parses a client supplied price and rounds it to the stored
// scale. Every error wraps ErrInvalidInput.
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: price: %w", ErrInvalidInput, err)
	}
	if err := CheckPriceRange(price); err != nil {
		return decimal.Zero, err
	}
	return price.Round(StoredPriceScale), nil
}

// CheckPriceRange reports whether price fits the stored precision once
// rounded to StoredPriceScale.
func CheckPriceRange(price decimal.Decimal) error {
	if exp := price.Exponent(); exp > MaxPriceIntegerDigits || exp < minPriceExponent {
		return fmt.Errorf("%w: price exponent %d out of range", ErrInvalidInput, exp)
	}
	if price.Round(StoredPriceScale).Abs().GreaterThanOrEqual(maxPrice) {
		return fmt.Errorf("%w: price exceeds %d integer digits", ErrInvalidInput, MaxPriceIntegerDigits)
	}
	return nil
}

// Product represents a row of the products table
//
// swagger:model
type Product struct {
	// The ID of the product
	//
	// required: true
	// min: 1
	// example: 1
	ID int `db:"id"`

	// The name of the product
	//
	// required: true
	// max length: 256
	// example: Lavender heart
	Name string `db:"name"`

	// The price of the product, always rendered with two decimals
	//
	// required: true
	// example: 9.25
	Price decimal.Decimal `db:"price"`

	// ISO code of the product's currency, null when unset
	//
	// required: false
	// example: GBP
	CurrencyISO *string `db:"currency_iso"`
}

// FormattedPrice renders the price as a fixed two-decimal string.
func (p *Product) FormattedPrice() string {
	return p.Price.StringFixed(PriceScale)
}

// Record implements Serializer
func (p *Product) Record() Record {
	return Record{
		{Column: "id", Value: p.ID},
		{Column: "name", Value: p.Name},
		{Column: "price", Value: p.FormattedPrice()},
		{Column: "currency_iso", Value: p.CurrencyISO},
	}
}

// ProductInput carries the raw form fields of a create or update request.
// An empty string means the field was not supplied.
type ProductInput struct {
	Name  string
	Price string
}

// Empty reports whether neither field was supplied.
func (in ProductInput) Empty() bool {
	return in.Name == "" && in.Price == ""
}
