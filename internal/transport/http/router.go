package httptransport

import (
	"log/slog"

	"github.com/ecomarket/marketplace/internal/transport/http/handler"
	"github.com/ecomarket/marketplace/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, productHandler *handler.ProductHandler, searchHandler *handler.SearchHandler, hmacKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	authMW := middleware.Auth(hmacKey)

	user := r.Group("/user")
	user.POST("/sign-up", authHandler.SignUp)
	user.POST("/sign-in", authHandler.SignIn)

	product := r.Group("/product")
	product.POST("/product-upload", authMW, productHandler.Upload)
	product.GET("/get-products", productHandler.List)
	product.GET("/get-product/:id", productHandler.GetByID)
	product.POST("/gemini-search", searchHandler.Search)

	return r
}
