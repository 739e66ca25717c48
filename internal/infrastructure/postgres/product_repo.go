package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/ecomarket/marketplace/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, price::text, description, image_url, user_id, created_at, updated_at`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, price, description, image_url, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query,
		product.Name,
		product.Price.String(),
		product.Description,
		product.ImageURL,
		product.UserID,
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (r *ProductRepository) List(ctx context.Context, input repository.ListProductsInput) ([]*domain.Product, int, error) {
	where := ""
	args := []any{input.Limit, (input.Page - 1) * input.Limit}
	countArgs := []any{}
	if input.UserID != "" {
		where = " WHERE user_id = $3"
		args = append(args, input.UserID)
		countArgs = append(countArgs, input.UserID)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT count(*) FROM products`
	if input.UserID != "" {
		countQuery += ` WHERE user_id = $1`
	}
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	return products, total, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) SearchSubstring(ctx context.Context, q string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, "%"+q+"%")
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	return collectProducts(rows)
}

func (r *ProductRepository) SearchKeywords(ctx context.Context, keywords []string) ([]*domain.Product, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	conds := make([]string, 0, len(keywords))
	args := make([]any, 0, len(keywords))
	for i, kw := range keywords {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d OR description ILIKE $%d", i+1, i+1))
		args = append(args, "%"+kw+"%")
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE (` +
		strings.Join(conds, ") OR (") + `) ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	return collectProducts(rows)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := row.Scan(&p.ID, &p.Name, &price, &p.Description, &p.ImageURL, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// NUMERIC comes back as text so the price survives without float drift.
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*domain.Product, error) {
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}
