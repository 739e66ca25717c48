package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/ecomarket/marketplace/internal/metrics"
	"github.com/ecomarket/marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
)

type productUsecaser interface {
	Create(ctx context.Context, input usecase.CreateProductInput) (*domain.Product, error)
	List(ctx context.Context, input usecase.ListProductsInput) ([]*domain.Product, usecase.Pagination, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type ProductHandler struct {
	productUsecase productUsecaser
	logger         *slog.Logger
}

func NewProductHandler(productUsecase productUsecaser, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		productUsecase: productUsecase,
		logger:         logger.With("component", "product_handler"),
	}
}

type productResponse struct {
	ID          string    `json:"id"`
	ProductName string    `json:"productName"`
	Price       string    `json:"price"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		ProductName: p.Name,
		// Price travels as a decimal string so 19.99 stays 19.99.
		Price:       p.Price.String(),
		Description: p.Description,
		Image:       p.ImageURL,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

// POST /product/product-upload (multipart form, Bearer auth)
// The owner is the authenticated user from the session token; a userId form
// field, if present, is ignored.
func (h *ProductHandler) Upload(c *gin.Context) {
	name := c.PostForm("productName")
	price := c.PostForm("price")
	description := c.PostForm("description")

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open image upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("read image upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	product, err := h.productUsecase.Create(c.Request.Context(), usecase.CreateProductInput{
		Name:        name,
		Price:       price,
		Description: description,
		Image:       image,
		ImageType:   fileHeader.Header.Get("Content-Type"),
		OwnerID:     c.GetString("userID"),
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingField),
			errors.Is(err, usecase.ErrInvalidPrice),
			errors.Is(err, usecase.ErrImageTooLarge),
			errors.Is(err, usecase.ErrImageType):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			h.logger.Error("product upload", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		}
		return
	}

	metrics.ProductsCreatedTotal.Inc()

	c.JSON(http.StatusCreated, gin.H{"product": toProductResponse(product)})
}

// GET /product/get-products?limit=&page=&userId=
func (h *ProductHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, _ := strconv.Atoi(c.Query("page"))

	products, pagination, err := h.productUsecase.List(c.Request.Context(), usecase.ListProductsInput{
		Page:   page,
		Limit:  limit,
		UserID: c.Query("userId"),
	})
	if err != nil {
		h.logger.Error("list products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   toProductResponses(products),
		"pagination": pagination,
	})
}

// GET /product/get-product/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	product, err := h.productUsecase.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": errProductNotFound})
			return
		}
		h.logger.Error("get product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(product)})
}
