package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSearchUnavailable = errors.New("search is temporarily unavailable")
)

type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	ImageURL    string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
