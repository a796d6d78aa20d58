package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Domenick1991/bookshop/internal/domain"
	"github.com/Domenick1991/bookshop/internal/repository"
	"github.com/google/uuid"
)

type ProductUseCase interface {
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListProducts(ctx context.Context, query ListQuery) ([]domain.Product, int, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error)
	SaveImage(ctx context.Context, id uuid.UUID, filename string, image io.Reader) (*domain.Product, error)
}

type Cache interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	InvalidateProduct(ctx context.Context, id uuid.UUID) error
}

type ImageStorage interface {
	Save(name string, r io.Reader) (string, error)
}

type ProductService struct {
	products repository.ProductRepository
	cache    Cache
	images   ImageStorage
}

type ProductInput struct {
	Name        string
	Description string
	Author      string
	Price       float64
	ImageURL    string
}

type ListQuery struct {
	Name     string
	Page     int
	PageSize int
}

func NewProductService(products repository.ProductRepository, cache Cache, images ImageStorage) *ProductService {
	return &ProductService{products: products, cache: cache, images: images}
}

func (s *ProductService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if input.Price < 0 {
		return nil, &domain.ValidationError{Reason: "price cannot be negative"}
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Author:      input.Author,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetProduct(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetProduct(ctx, product)
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, query ListQuery) ([]domain.Product, int, error) {
	return s.products.List(ctx, query.Name, query.Page, query.PageSize)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	if input.Price < 0 {
		return nil, &domain.ValidationError{Reason: "price cannot be negative"}
	}

	updated, err := s.products.Update(ctx, &domain.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Author:      input.Author,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateProduct(ctx, id)
	}
	return updated, nil
}

// DeleteProduct removes the product even when it is linked to a booking;
// the owning booking's set silently loses the member.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	count, err := s.products.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateProduct(ctx, id)
	}
	return count, nil
}

// SaveImage stores the uploaded image and points the product at it.
func (s *ProductService) SaveImage(ctx context.Context, id uuid.UUID, filename string, image io.Reader) (*domain.Product, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}

	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	path, err := s.images.Save(fmt.Sprintf("%s%s", id, filepath.Ext(filename)), image)
	if err != nil {
		return nil, &domain.ValidationError{Reason: err.Error()}
	}

	current.ImageURL = path
	updated, err := s.products.Update(ctx, current)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateProduct(ctx, id)
	}
	return updated, nil
}

var _ ProductUseCase = (*ProductService)(nil)
