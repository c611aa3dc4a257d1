package main

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahvecikaan/product-catalog/internal/repository"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	require.NoError(t, seed(ctx, store, hclog.NewNullLogger()))

	products, err := store.Products().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)

	prices := []string{"9.25", "45.00", "19.95"}
	for i, p := range products {
		assert.Equal(t, sampleProducts[i].name, p.Name)
		assert.Equal(t, prices[i], p.FormattedPrice())
		require.NotNil(t, p.CurrencyISO)
		assert.Equal(t, "GBP", *p.CurrencyISO)
	}

	// the currency is reused on a second run
	require.NoError(t, seed(ctx, store, hclog.NewNullLogger()))
	currencies, err := store.Currencies().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, currencies, 1)
}
