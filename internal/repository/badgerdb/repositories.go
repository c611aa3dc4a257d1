package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v3"
	"github.com/shopspring/decimal"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/repository"
)

type productRow struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	CurrencyISO *string         `json:"currency_iso"`
}

// newProductRow rounds the price to the stored scale.
func newProductRow(p *domain.Product) productRow {
	return productRow{ID: p.ID, Name: p.Name, Price: p.Price.Round(domain.StoredPriceScale), CurrencyISO: p.CurrencyISO}
}

func (r *productRow) product() *domain.Product {
	return &domain.Product{ID: r.ID, Name: r.Name, Price: r.Price, CurrencyISO: r.CurrencyISO}
}

type currencyRow struct {
	ID          int     `json:"id"`
	ISOCode     string  `json:"iso_code"`
	Description *string `json:"description"`
	Symbol      *string `json:"symbol"`
}

func (r *currencyRow) currency() *domain.Currency {
	return &domain.Currency{ID: r.ID, ISOCode: r.ISOCode, Description: r.Description, Symbol: r.Symbol}
}

type productRepository struct {
	store *Store
}

var _ repository.ProductRepository = (*productRepository)(nil)

func (r *productRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	var rows []*productRow
	err := r.store.db.View(func(txn *badger.Txn) error {
		var err error
		rows, err = scan[productRow](txn, productPrefix)
		return err
	})
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.product())
	}
	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	var row productRow
	err := r.store.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, idKey(productPrefix, id), &row)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.product(), nil
}

func (r *productRepository) Add(ctx context.Context, product *domain.Product) error {
	if err := repository.CheckProductColumns(product); err != nil {
		return err
	}

	id, err := nextID(r.store.productSeq)
	if err != nil {
		return err
	}

	row := newProductRow(product)
	row.ID = id
	err = r.store.update(func(txn *badger.Txn) error {
		if err := checkCurrencyReference(txn, product.CurrencyISO); err != nil {
			return err
		}
		return setJSON(txn, idKey(productPrefix, id), row)
	})
	if err != nil {
		return err
	}

	product.ID = id
	product.Price = row.Price
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := repository.CheckProductColumns(product); err != nil {
		return err
	}

	key := idKey(productPrefix, product.ID)
	row := newProductRow(product)
	err := r.store.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrProductNotFound
			}
			return err
		}
		if err := checkCurrencyReference(txn, product.CurrencyISO); err != nil {
			return err
		}
		return setJSON(txn, key, row)
	})
	if err != nil {
		return err
	}

	product.Price = row.Price
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int) error {
	key := idKey(productPrefix, id)
	return r.store.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrProductNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func checkCurrencyReference(txn *badger.Txn, isoCode *string) error {
	if isoCode == nil {
		return nil
	}
	_, err := txn.Get([]byte(currencyISOPrefix + *isoCode))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: currency %q does not exist", domain.ErrConstraintViolation, *isoCode)
	}
	return err
}

type currencyRepository struct {
	store *Store
}

var _ repository.CurrencyRepository = (*currencyRepository)(nil)

func (r *currencyRepository) GetAll(ctx context.Context) ([]*domain.Currency, error) {
	var rows []*currencyRow
	err := r.store.db.View(func(txn *badger.Txn) error {
		var err error
		rows, err = scan[currencyRow](txn, currencyPrefix)
		return err
	})
	if err != nil {
		return nil, err
	}

	currencies := make([]*domain.Currency, 0, len(rows))
	for _, row := range rows {
		currencies = append(currencies, row.currency())
	}
	return currencies, nil
}

func (r *currencyRepository) GetByISOCode(ctx context.Context, isoCode string) (*domain.Currency, error) {
	var row currencyRow
	err := r.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currencyISOPrefix + isoCode))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(string(val))
		if err != nil {
			return fmt.Errorf("corrupt index entry for %q: %w", isoCode, err)
		}
		return getJSON(txn, idKey(currencyPrefix, id), &row)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrCurrencyNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.currency(), nil
}

func (r *currencyRepository) Add(ctx context.Context, currency *domain.Currency) error {
	if err := repository.CheckCurrencyColumns(currency); err != nil {
		return err
	}

	id, err := nextID(r.store.currencySeq)
	if err != nil {
		return err
	}

	indexKey := []byte(currencyISOPrefix + currency.ISOCode)
	err = r.store.update(func(txn *badger.Txn) error {
		_, err := txn.Get(indexKey)
		if err == nil {
			return fmt.Errorf("%w: iso_code %q already exists", domain.ErrConstraintViolation, currency.ISOCode)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		row := currencyRow{ID: id, ISOCode: currency.ISOCode, Description: currency.Description, Symbol: currency.Symbol}
		if err := setJSON(txn, idKey(currencyPrefix, id), row); err != nil {
			return err
		}
		return txn.Set(indexKey, []byte(strconv.Itoa(id)))
	})
	if err != nil {
		return err
	}

	currency.ID = id
	return nil
}
