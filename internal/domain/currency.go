package domain

// Column widths of the currencies table.
const (
	ISOCodeLength        = 3
	MaxDescriptionLength = 100
	MaxSymbolLength      = 3
)

// Currency represents a row of the currencies table.
// See https://en.wikipedia.org/wiki/ISO_4217 for the available codes.
type Currency struct {
	ID          int     `db:"id"`
	ISOCode     string  `db:"iso_code"`
	Description *string `db:"description"`
	Symbol      *string `db:"symbol"`
}

// NewCurrency builds a currency, leaving empty optional fields unset.
func NewCurrency(isoCode, description, symbol string) *Currency {
	c := &Currency{ISOCode: isoCode}
	if description != "" {
		c.Description = &description
	}
	if symbol != "" {
		c.Symbol = &symbol
	}
	return c
}

// Record implements Serializer
func (c *Currency) Record() Record {
	return Record{
		{Column: "id", Value: c.ID},
		{Column: "iso_code", Value: c.ISOCode},
		{Column: "description", Value: c.Description},
		{Column: "symbol", Value: c.Symbol},
	}
}
