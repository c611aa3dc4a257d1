package service

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/repository"
)

type CurrencyService interface {
	ListCurrencies(ctx context.Context) ([]*domain.Currency, error)
	GetCurrency(ctx context.Context, isoCode string) (*domain.Currency, error)
	AddCurrency(ctx context.Context, currency *domain.Currency) error
}

type currencyService struct {
	repo repository.CurrencyRepository
	log  hclog.Logger
}

func NewCurrencyService(repo repository.CurrencyRepository, logger hclog.Logger) CurrencyService {
	return &currencyService{repo: repo, log: logger}
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]*domain.Currency, error) {
	s.log.Debug("Listing currencies")

	currencies, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.Error("Unable to list currencies", "error", err)
		return nil, err
	}
	return currencies, nil
}

func (s *currencyService) GetCurrency(ctx context.Context, isoCode string) (*domain.Currency, error) {
	return s.repo.GetByISOCode(ctx, isoCode)
}

func (s *currencyService) AddCurrency(ctx context.Context, currency *domain.Currency) error {
	s.log.Debug("Adding currency", "iso_code", currency.ISOCode)

	if err := s.repo.Add(ctx, currency); err != nil {
		s.log.Error("Unable to add currency", "iso_code", currency.ISOCode, "error", err)
		return err
	}
	return nil
}
