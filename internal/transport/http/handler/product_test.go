package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/ecomarket/marketplace/internal/domain"
	"github.com/ecomarket/marketplace/internal/transport/http/handler"
	"github.com/ecomarket/marketplace/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type fakeProductUsecase struct {
	create  func(ctx context.Context, input usecase.CreateProductInput) (*domain.Product, error)
	list    func(ctx context.Context, input usecase.ListProductsInput) ([]*domain.Product, usecase.Pagination, error)
	getByID func(ctx context.Context, id string) (*domain.Product, error)
}

func (f *fakeProductUsecase) Create(ctx context.Context, input usecase.CreateProductInput) (*domain.Product, error) {
	return f.create(ctx, input)
}

func (f *fakeProductUsecase) List(ctx context.Context, input usecase.ListProductsInput) ([]*domain.Product, usecase.Pagination, error) {
	return f.list(ctx, input)
}

func (f *fakeProductUsecase) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return f.getByID(ctx, id)
}

// newProductEngine routes product endpoints; authedUser, when non-empty,
// simulates the Auth middleware having verified a session token.
func newProductEngine(uc *fakeProductUsecase, authedUser string) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewProductHandler(uc, logger)

	r := gin.New()
	r.POST("/product/product-upload", func(c *gin.Context) {
		if authedUser != "" {
			c.Set("userID", authedUser)
		}
		h.Upload(c)
	})
	r.GET("/product/get-products", h.List)
	r.GET("/product/get-product/:id", h.GetByID)
	return r
}

func multipartUpload(t *testing.T, fields map[string]string, imageName, imageType string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if image != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="image"; filename="`+imageName+`"`)
		hdr.Set("Content-Type", imageType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create image part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:          "prod-1",
		Name:        "Ceramic Mug",
		Price:       decimal.RequireFromString("19.99"),
		Description: "A nice mug",
		ImageURL:    "https://images.test.local/products/abc.jpg",
		UserID:      "user-1",
	}
}

// ---- Upload ----

func TestUpload_OwnerComesFromSessionNotForm(t *testing.T) {
	var gotOwner string
	uc := &fakeProductUsecase{
		create: func(_ context.Context, input usecase.CreateProductInput) (*domain.Product, error) {
			gotOwner = input.OwnerID
			return sampleProduct(), nil
		},
	}

	// The form carries a forged userId; the handler must ignore it.
	body, contentType := multipartUpload(t, map[string]string{
		"productName": "Ceramic Mug",
		"price":       "19.99",
		"description": "A nice mug",
		"userId":      "attacker-1",
	}, "mug.jpg", "image/jpeg", []byte("fake-jpeg"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/product/product-upload", body)
	req.Header.Set("Content-Type", contentType)
	newProductEngine(uc, "user-1").ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body)
	}
	if gotOwner != "user-1" {
		t.Fatalf("owner = %q, want the authenticated user", gotOwner)
	}
}

func TestUpload_MissingImage_Returns400(t *testing.T) {
	uc := &fakeProductUsecase{
		create: func(_ context.Context, _ usecase.CreateProductInput) (*domain.Product, error) {
			t.Fatal("usecase called without image")
			return nil, nil
		},
	}

	body, contentType := multipartUpload(t, map[string]string{
		"productName": "Ceramic Mug",
		"price":       "19.99",
		"description": "A nice mug",
	}, "", "", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/product/product-upload", body)
	req.Header.Set("Content-Type", contentType)
	newProductEngine(uc, "user-1").ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUpload_ValidationErrorFromUsecase_Returns400(t *testing.T) {
	uc := &fakeProductUsecase{
		create: func(_ context.Context, _ usecase.CreateProductInput) (*domain.Product, error) {
			return nil, usecase.ErrInvalidPrice
		},
	}

	body, contentType := multipartUpload(t, map[string]string{
		"productName": "Ceramic Mug",
		"price":       "not-a-number",
		"description": "A nice mug",
	}, "mug.jpg", "image/jpeg", []byte("fake-jpeg"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/product/product-upload", body)
	req.Header.Set("Content-Type", contentType)
	newProductEngine(uc, "user-1").ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ---- List ----

func TestList_ReturnsProductsAndPagination(t *testing.T) {
	uc := &fakeProductUsecase{
		list: func(_ context.Context, input usecase.ListProductsInput) ([]*domain.Product, usecase.Pagination, error) {
			if input.Page != 3 || input.Limit != 10 || input.UserID != "user-1" {
				t.Errorf("input = %+v", input)
			}
			return []*domain.Product{sampleProduct()}, usecase.Pagination{Total: 25, Page: 3, Limit: 10, Pages: 3}, nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/product/get-products?limit=10&page=3&userId=user-1", nil)
	newProductEngine(uc, "").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Products []struct {
			ProductName string `json:"productName"`
			Price       string `json:"price"`
		} `json:"products"`
		Pagination struct {
			Total int `json:"total"`
			Pages int `json:"pages"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].Price != "19.99" {
		t.Errorf("products = %+v", body.Products)
	}
	if body.Pagination.Total != 25 || body.Pagination.Pages != 3 {
		t.Errorf("pagination = %+v", body.Pagination)
	}
}

// ---- GetByID ----

func TestGetByID_NotFound_Returns404(t *testing.T) {
	uc := &fakeProductUsecase{
		getByID: func(_ context.Context, _ string) (*domain.Product, error) {
			return nil, domain.ErrProductNotFound
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/product/get-product/missing", nil)
	newProductEngine(uc, "").ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetByID_ReturnsExactPrice(t *testing.T) {
	uc := &fakeProductUsecase{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			if id != "prod-1" {
				t.Errorf("id = %s, want prod-1", id)
			}
			return sampleProduct(), nil
		},
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/product/get-product/prod-1", nil)
	newProductEngine(uc, "").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Product struct {
			Price string `json:"price"`
		} `json:"product"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Product.Price != "19.99" {
		t.Errorf("price = %q, want 19.99 exactly", body.Product.Price)
	}
}
