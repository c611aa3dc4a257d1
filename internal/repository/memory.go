package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// MemoryStore keeps both tables in process. It applies the same uniqueness,
// foreign-key, width and price precision rules as the PostgreSQL schema, and hands out ids from
// sequences that never reuse a value. Nothing survives a restart.
type MemoryStore struct {
	mutex sync.RWMutex

	products      map[int]domain.Product
	nextProductID int

	currencies     map[int]domain.Currency
	nextCurrencyID int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:       make(map[int]domain.Product),
		nextProductID:  1,
		currencies:     make(map[int]domain.Currency),
		nextCurrencyID: 1,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Products() ProductRepository {
	return &memoryProductRepository{s}
}

func (s *MemoryStore) Currencies() CurrencyRepository {
	return &memoryCurrencyRepository{s}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() {}

// currencyExists must be called with the mutex held.
func (s *MemoryStore) currencyExists(isoCode string) bool {
	for _, c := range s.currencies {
		if c.ISOCode == isoCode {
			return true
		}
	}
	return false
}

// checkProduct must be called with the mutex held.
func (s *MemoryStore) checkProduct(p *domain.Product) error {
	if err := CheckProductColumns(p); err != nil {
		return err
	}
	if p.CurrencyISO != nil && !s.currencyExists(*p.CurrencyISO) {
		return fmt.Errorf("%w: currency %q does not exist", domain.ErrConstraintViolation, *p.CurrencyISO)
	}
	return nil
}

type memoryProductRepository struct {
	store *MemoryStore
}

func (r *memoryProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	products := make([]*domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		product := p
		products = append(products, &product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	return products, nil
}

func (r *memoryProductRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	p, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *memoryProductRepository) Add(ctx context.Context, product *domain.Product) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if err := r.store.checkProduct(product); err != nil {
		return err
	}

	product.ID = r.store.nextProductID
	product.Price = product.Price.Round(domain.StoredPriceScale)
	r.store.nextProductID++
	r.store.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if _, ok := r.store.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	if err := r.store.checkProduct(product); err != nil {
		return err
	}

	product.Price = product.Price.Round(domain.StoredPriceScale)
	r.store.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) Delete(ctx context.Context, id int) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if _, ok := r.store.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.store.products, id)
	return nil
}

type memoryCurrencyRepository struct {
	store *MemoryStore
}

func (r *memoryCurrencyRepository) GetAll(ctx context.Context) ([]*domain.Currency, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	currencies := make([]*domain.Currency, 0, len(r.store.currencies))
	for _, c := range r.store.currencies {
		currency := c
		currencies = append(currencies, &currency)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].ID < currencies[j].ID })

	return currencies, nil
}

func (r *memoryCurrencyRepository) GetByISOCode(ctx context.Context, isoCode string) (*domain.Currency, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	for _, c := range r.store.currencies {
		if c.ISOCode == isoCode {
			currency := c
			return &currency, nil
		}
	}
	return nil, domain.ErrCurrencyNotFound
}

func (r *memoryCurrencyRepository) Add(ctx context.Context, currency *domain.Currency) error {
	r.store.mutex.Lock()
	defer r.store.mutex.Unlock()

	if err := CheckCurrencyColumns(currency); err != nil {
		return err
	}
	if r.store.currencyExists(currency.ISOCode) {
		return fmt.Errorf("%w: iso_code %q already exists", domain.ErrConstraintViolation, currency.ISOCode)
	}

	currency.ID = r.store.nextCurrencyID
	r.store.nextCurrencyID++
	r.store.currencies[currency.ID] = *currency
	return nil
}
