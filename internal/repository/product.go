package repository

import (
	"context"

	"github.com/ecomarket/marketplace/internal/domain"
)

type ListProductsInput struct {
	// Page is one-based: page 1 corresponds to offset 0.
	Page   int
	Limit  int
	UserID string // empty means all owners
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	List(ctx context.Context, input ListProductsInput) ([]*domain.Product, int, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// SearchSubstring matches q case-insensitively against name or description.
	SearchSubstring(ctx context.Context, q string) ([]*domain.Product, error)
	// SearchKeywords returns products matching any of the keywords against
	// name or description, case-insensitively.
	SearchKeywords(ctx context.Context, keywords []string) ([]*domain.Product, error)
}
