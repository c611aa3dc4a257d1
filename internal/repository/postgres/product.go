package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/repository"
)

const productsTable = "products"

var productColumns = []string{"id", "name", "price", "currency_iso"}

// ProductRepository reads and writes the products table.
type ProductRepository struct {
	pool *pgxpool.Pool
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func selectProducts() squirrel.SelectBuilder {
	return builder().
		Select(productColumns...).
		From(productsTable)
}

func insertProduct(p *domain.Product) squirrel.InsertBuilder {
	return builder().
		Insert(productsTable).
		Columns("name", "price", "currency_iso").
		Values(p.Name, p.Price, p.CurrencyISO).
		Suffix("RETURNING id, price")
}

func updateProduct(p *domain.Product) squirrel.UpdateBuilder {
	return builder().
		Update(productsTable).
		Set("name", p.Name).
		Set("price", p.Price).
		Set("currency_iso", p.CurrencyISO).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING price")
}

func deleteProduct(id int) squirrel.DeleteBuilder {
	return builder().
		Delete(productsTable).
		Where(squirrel.Eq{"id": id})
}

func (r *ProductRepository) GetAll(ctx context.Context) ([]*domain.Product, error) {
	sql, args, err := selectProducts().OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	products := make([]*domain.Product, 0)
	if err := pgxscan.Select(ctx, r.pool, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", productsTable, err)
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	sql, args, err := selectProducts().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var product domain.Product
	if err := pgxscan.Get(ctx, r.pool, &product, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get %s: %w", productsTable, err)
	}
	return &product, nil
}

func (r *ProductRepository) Add(ctx context.Context, product *domain.Product) error {
	if err := domain.CheckPriceRange(product.Price); err != nil {
		return err
	}

	sql, args, err := insertProduct(product).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	var (
		id    int
		price decimal.Decimal
	)
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&id, &price); err != nil {
		return translate(fmt.Errorf("insert %s: %w", productsTable, err))
	}
	product.ID = id
	product.Price = price
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := domain.CheckPriceRange(product.Price); err != nil {
		return err
	}

	sql, args, err := updateProduct(product).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	// the stored price is read back since the column rounds it
	var price decimal.Decimal
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrProductNotFound
		}
		return translate(fmt.Errorf("update %s: %w", productsTable, err))
	}
	product.Price = price
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	sql, args, err := deleteProduct(id).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return translate(fmt.Errorf("delete %s: %w", productsTable, err))
	}
	if result.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
