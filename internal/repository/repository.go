package repository

import (
	"context"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

type ProductRepository interface {
	// GetAll returns every product ordered by ascending id.
	GetAll(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int) (*domain.Product, error)
	// Add inserts the product and sets its store-assigned id.
	Add(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int) error
}

type CurrencyRepository interface {
	// GetAll returns every currency ordered by ascending id.
	GetAll(ctx context.Context) ([]*domain.Currency, error)
	GetByISOCode(ctx context.Context, isoCode string) (*domain.Currency, error)
	// Add inserts the currency and sets its store-assigned id.
	Add(ctx context.Context, currency *domain.Currency) error
}

// Store is a handle on one backing database. It is opened by the
// application at startup and closed on shutdown.
type Store interface {
	Products() ProductRepository
	Currencies() CurrencyRepository
	Ping(ctx context.Context) error
	Close()
}
