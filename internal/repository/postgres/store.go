package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kahvecikaan/product-catalog/internal/repository"
)

// Store owns the connection pool shared by the repositories.
type Store struct {
	pool       *pgxpool.Pool
	log        hclog.Logger
	products   *ProductRepository
	currencies *CurrencyRepository
}

var _ repository.Store = (*Store)(nil)

// NewStore opens a pool with cfg and builds the repositories on it.
func NewStore(ctx context.Context, cfg PoolConfig, log hclog.Logger) (*Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	stat := pool.Stat()
	log.Info("Connected to PostgreSQL", "max_conns", stat.MaxConns(), "total_conns", stat.TotalConns())

	return NewStoreWithPool(pool, log), nil
}

// NewStoreWithPool builds the repositories on an existing pool. The store
// takes ownership of the pool.
func NewStoreWithPool(pool *pgxpool.Pool, log hclog.Logger) *Store {
	return &Store{
		pool:       pool,
		log:        log,
		products:   &ProductRepository{pool: pool},
		currencies: &CurrencyRepository{pool: pool},
	}
}

func (s *Store) Products() repository.ProductRepository {
	return s.products
}

func (s *Store) Currencies() repository.CurrencyRepository {
	return s.currencies
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
		s.log.Info("PostgreSQL connection pool closed")
	}
}

// builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
