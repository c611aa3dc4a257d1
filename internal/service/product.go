package service

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/events"
	"github.com/kahvecikaan/product-catalog/internal/repository"
)

type ProductService interface {
	GetProducts(ctx context.Context) ([]*domain.Product, error)
	GetProductByID(ctx context.Context, id int) (*domain.Product, error)
	AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type productService struct {
	repo       repository.ProductRepository
	validation *domain.Validation
	eventBus   *events.EventBus[any]
	logger     hclog.Logger
}

// NewProductService returns the product use cases over repo. Change events
// are published on eventBus; a nil bus disables publication.
func NewProductService(
	repo repository.ProductRepository,
	eventBus *events.EventBus[any],
	logger hclog.Logger) ProductService {
	return &productService{
		repo:       repo,
		validation: domain.NewValidation(),
		eventBus:   eventBus,
		logger:     logger,
	}
}

func (s *productService) GetProducts(ctx context.Context) ([]*domain.Product, error) {
	s.logger.Debug("Getting all products")

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("Unable to get products", "error", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	s.logger.Debug("Getting product by ID", "id", id)

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Debug("Unable to get the product by ID", "id", id, "error", err)
		return nil, err
	}
	return product, nil
}

func (s *productService) AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	s.logger.Debug("Adding new product", "name", in.Name)

	if errs := s.validation.ValidateCreate(in); len(errs) > 0 {
		s.logger.Debug("Rejected new product", "errors", errs.Errors())
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errs)
	}

	price, err := domain.ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	product := &domain.Product{Name: in.Name, Price: price}
	if err := s.repo.Add(ctx, product); err != nil {
		s.logger.Error("Unable to add product", "name", in.Name, "error", err)
		return nil, err
	}

	s.publish(events.ProductAdded{ProductID: product.ID, Product: product.Record()})
	return product, nil
}

// UpdateProduct changes only the supplied fields. The product must exist
// before the input is looked at.
func (s *productService) UpdateProduct(ctx context.Context, id int, in domain.ProductInput) (*domain.Product, error) {
	s.logger.Debug("Updating product", "id", id)

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Debug("Unable to find product to update", "id", id, "error", err)
		return nil, err
	}

	if in.Empty() {
		return nil, domain.ErrNoFieldsSupplied
	}
	if errs := s.validation.ValidateUpdate(in); len(errs) > 0 {
		s.logger.Debug("Rejected product update", "id", id, "errors", errs.Errors())
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errs)
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Price != "" {
		price, err := domain.ParsePrice(in.Price)
		if err != nil {
			return nil, err
		}
		product.Price = price
	}

	if err := s.repo.Update(ctx, product); err != nil {
		s.logger.Error("Unable to update product", "id", id, "error", err)
		return nil, err
	}

	s.publish(events.ProductUpdated{ProductID: product.ID, Product: product.Record()})
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int) error {
	s.logger.Debug("Deleting product", "id", id)

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Debug("Unable to delete product", "id", id, "error", err)
		return err
	}

	s.publish(events.ProductDeleted{ProductID: id})
	return nil
}

func (s *productService) publish(event any) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(event)
}
