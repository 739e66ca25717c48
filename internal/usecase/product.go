package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/ecomarket/marketplace/internal/metrics"
	"github.com/ecomarket/marketplace/internal/repository"
	"github.com/ecomarket/marketplace/internal/storage"
	"github.com/shopspring/decimal"
)

const maxImageBytes = 10 << 20 // 10MB

var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidPrice  = errors.New("price must be a non-negative number")
	ErrImageTooLarge = errors.New("image too large, maximum size is 10MB")
	ErrImageType     = errors.New("unsupported image type")
	ErrImageUpload   = errors.New("image upload failed")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type ProductUsecase struct {
	repo   repository.ProductRepository
	images storage.ImageStore
	logger *slog.Logger
}

func NewProductUsecase(repo repository.ProductRepository, images storage.ImageStore, logger *slog.Logger) *ProductUsecase {
	return &ProductUsecase{
		repo:   repo,
		images: images,
		logger: logger.With("component", "product_usecase"),
	}
}

type CreateProductInput struct {
	Name        string
	Price       string
	Description string
	Image       []byte
	ImageType   string
	OwnerID     string
}

func (u *ProductUsecase) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" || input.Description == "" || input.OwnerID == "" {
		return nil, ErrMissingField
	}

	price, err := decimal.NewFromString(input.Price)
	if err != nil || price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	if len(input.Image) == 0 {
		return nil, ErrMissingField
	}
	if len(input.Image) > maxImageBytes {
		return nil, ErrImageTooLarge
	}
	if !allowedImageTypes[input.ImageType] {
		return nil, ErrImageType
	}

	timer := metrics.NewUploadTimer()
	imageURL, err := u.images.Upload(ctx, input.Image, input.ImageType)
	timer.Observe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUpload, err)
	}

	product, err := u.repo.Create(ctx, &domain.Product{
		Name:        input.Name,
		Price:       price,
		Description: input.Description,
		ImageURL:    imageURL,
		UserID:      input.OwnerID,
	})
	if err != nil {
		// The uploaded object is orphaned here; accepted inconsistency,
		// surfaced in the logs for manual cleanup.
		u.logger.Warn("product insert failed after image upload", "image_url", imageURL, "error", err)
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

type ListProductsInput struct {
	Page   int
	Limit  int
	UserID string
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func (u *ProductUsecase) List(ctx context.Context, input ListProductsInput) ([]*domain.Product, Pagination, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	products, total, err := u.repo.List(ctx, repository.ListProductsInput{
		Page:   page,
		Limit:  limit,
		UserID: input.UserID,
	})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list products: %w", err)
	}

	pages := (total + limit - 1) / limit

	return products, Pagination{Total: total, Page: page, Limit: limit, Pages: pages}, nil
}

func (u *ProductUsecase) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	product, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}
