package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/gin-gonic/gin"
)

type searchUsecaser interface {
	Search(ctx context.Context, query string) ([]*domain.Product, error)
}

type SearchHandler struct {
	searchUsecase searchUsecaser
	logger        *slog.Logger
}

func NewSearchHandler(searchUsecase searchUsecaser, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		searchUsecase: searchUsecase,
		logger:        logger.With("component", "search_handler"),
	}
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

// POST /product/gemini-search
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": errQueryRequired})
		return
	}

	products, err := h.searchUsecase.Search(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrSearchUnavailable) {
			c.JSON(http.StatusInternalServerError, gin.H{"message": errSearchUnavailable})
			return
		}
		h.logger.Error("search", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": toProductResponses(products)})
}
