package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

// openIntegrationStore connects to TEST_DATABASE_URL, migrating it first.
// Tests using it are skipped when the variable is unset.
func openIntegrationStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	log := hclog.NewNullLogger()
	require.NoError(t, Migrate(dsn, log))

	store, err := NewStore(context.Background(), DefaultPoolConfig(dsn), log)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func addTestProduct(t *testing.T, store *Store, p *domain.Product) {
	t.Helper()
	require.NoError(t, store.Products().Add(context.Background(), p))
	t.Cleanup(func() {
		err := store.Products().Delete(context.Background(), p.ID)
		if err != nil && !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("cleanup product %d: %v", p.ID, err)
		}
	})
}

func TestPostgresProductRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openIntegrationStore(t)

	p := &domain.Product{Name: "Lavender heart", Price: decimal.RequireFromString("9.25")}
	addTestProduct(t, store, p)
	assert.Positive(t, p.ID)

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lavender heart", got.Name)
	assert.Equal(t, "9.25", got.FormattedPrice())
	assert.Nil(t, got.CurrencyISO)

	got.Name = "Lavender hearts"
	require.NoError(t, store.Products().Update(ctx, got))

	got, err = store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lavender hearts", got.Name)

	all, err := store.Products().GetAll(ctx)
	require.NoError(t, err)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestPostgresReturnsStoredPrice(t *testing.T) {
	ctx := context.Background()
	store := openIntegrationStore(t)

	p := &domain.Product{Name: "Rounded", Price: decimal.RequireFromString("0.00495")}
	addTestProduct(t, store, p)
	assert.True(t, decimal.RequireFromString("0.005").Equal(p.Price), "got %s", p.Price)

	got, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.FormattedPrice(), got.FormattedPrice())

	got.Price = decimal.RequireFromString("2.00495")
	require.NoError(t, store.Products().Update(ctx, got))
	assert.Equal(t, "2.01", got.FormattedPrice())
}

func TestPostgresMissingRows(t *testing.T) {
	ctx := context.Background()
	store := openIntegrationStore(t)

	const missing = 2147483000

	_, err := store.Products().GetByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	err = store.Products().Update(ctx, &domain.Product{ID: missing, Name: "x", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.ErrorIs(t, store.Products().Delete(ctx, missing), domain.ErrProductNotFound)
}

func TestPostgresConstraints(t *testing.T) {
	ctx := context.Background()
	store := openIntegrationStore(t)

	qqq := "QQQ"
	err := store.Products().Add(ctx, &domain.Product{Name: "a", Price: decimal.NewFromInt(1), CurrencyISO: &qqq})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	err = store.Products().Add(ctx, &domain.Product{Name: strings.Repeat("n", domain.MaxProductNameLength+1), Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Products().Add(ctx, &domain.Product{Name: "a", Price: decimal.NewFromInt(123456789012)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// XTS is reserved for testing by ISO 4217
	xts := domain.NewCurrency("XTS", "Test currency", "")
	if _, err := store.Currencies().GetByISOCode(ctx, xts.ISOCode); errors.Is(err, domain.ErrCurrencyNotFound) {
		require.NoError(t, store.Currencies().Add(ctx, xts))
	}
	assert.ErrorIs(t, store.Currencies().Add(ctx, domain.NewCurrency("XTS", "", "")), domain.ErrConstraintViolation)

	p := &domain.Product{Name: "priced in XTS", Price: decimal.NewFromInt(1), CurrencyISO: &xts.ISOCode}
	addTestProduct(t, store, p)

	got, err := store.Currencies().GetByISOCode(ctx, "XTS")
	require.NoError(t, err)
	assert.Equal(t, "XTS", got.ISOCode)
}
