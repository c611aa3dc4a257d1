package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/repository"
)

const currenciesTable = "currencies"

var currencyColumns = []string{"id", "iso_code", "description", "symbol"}

// CurrencyRepository reads and writes the currencies table.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

var _ repository.CurrencyRepository = (*CurrencyRepository)(nil)

func selectCurrencies() squirrel.SelectBuilder {
	return builder().
		Select(currencyColumns...).
		From(currenciesTable)
}

func insertCurrency(c *domain.Currency) squirrel.InsertBuilder {
	return builder().
		Insert(currenciesTable).
		Columns("iso_code", "description", "symbol").
		Values(c.ISOCode, c.Description, c.Symbol).
		Suffix("RETURNING id")
}

func (r *CurrencyRepository) GetAll(ctx context.Context) ([]*domain.Currency, error) {
	sql, args, err := selectCurrencies().OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	currencies := make([]*domain.Currency, 0)
	if err := pgxscan.Select(ctx, r.pool, &currencies, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", currenciesTable, err)
	}
	return currencies, nil
}

func (r *CurrencyRepository) GetByISOCode(ctx context.Context, isoCode string) (*domain.Currency, error) {
	sql, args, err := selectCurrencies().Where(squirrel.Eq{"iso_code": isoCode}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var currency domain.Currency
	if err := pgxscan.Get(ctx, r.pool, &currency, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrCurrencyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", currenciesTable, err)
	}
	return &currency, nil
}

func (r *CurrencyRepository) Add(ctx context.Context, currency *domain.Currency) error {
	sql, args, err := insertCurrency(currency).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	var id int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return translate(fmt.Errorf("insert %s: %w", currenciesTable, err))
	}
	currency.ID = id
	return nil
}
