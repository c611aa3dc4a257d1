// Command seed loads the sample currency and products into the configured
// store.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/nicholasjackson/env"
	"github.com/shopspring/decimal"

	"github.com/kahvecikaan/product-catalog/internal/app"
	"github.com/kahvecikaan/product-catalog/internal/config"
	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/repository"
)

var (
	profileName = env.String("PRODUCT_API_ENV", false,
		string(config.Default), "Configuration profile [dev, test, stage, prod, default]")
	settingsFile = env.String("PRODUCT_API_SETTINGS", false,
		"", "Optional settings file layered over the profile")
)

type sampleProduct struct {
	name  string
	price string
}

var sampleProducts = []sampleProduct{
	{"Lavender heart", "9.25"},
	{"Personalised cufflinks", "45.00"},
	{"Kids T-shirt", "19.95"},
}

func main() {
	_ = godotenv.Load()

	logger := hclog.New(&hclog.LoggerOptions{Name: "seed", Level: hclog.Info})

	if err := env.Parse(); err != nil {
		logger.Error("Unable to parse environment", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*profileName, *settingsFile)
	if err != nil {
		logger.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Unable to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := seed(ctx, store, logger); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, store repository.Store, logger hclog.Logger) error {
	gbp := domain.NewCurrency("GBP", "Pound sterling", "£")

	_, err := store.Currencies().GetByISOCode(ctx, gbp.ISOCode)
	switch {
	case errors.Is(err, domain.ErrCurrencyNotFound):
		if err := store.Currencies().Add(ctx, gbp); err != nil {
			return err
		}
		logger.Info("Added currency", "iso_code", gbp.ISOCode, "id", gbp.ID)
	case err != nil:
		return err
	default:
		logger.Info("Currency already present", "iso_code", gbp.ISOCode)
	}

	for _, sp := range sampleProducts {
		p := &domain.Product{
			Name:        sp.name,
			Price:       decimal.RequireFromString(sp.price),
			CurrencyISO: &gbp.ISOCode,
		}
		if err := store.Products().Add(ctx, p); err != nil {
			return err
		}
		logger.Info("Added product", "id", p.ID, "name", p.Name, "price", p.FormattedPrice())
	}
	return nil
}
