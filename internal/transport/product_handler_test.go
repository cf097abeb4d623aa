package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mock product service for handler testing
type mockProductService struct {
	createFn func(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error)
	getFn    func(ctx context.Context, id int64) (*domain.Product, error)
	listFn   func(ctx context.Context, limit, offset int) ([]*domain.Product, int, int, int, error)
}

func (m *mockProductService) CreateProduct(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error) {
	return m.createFn(ctx, name, price, stock)
}

func (m *mockProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return m.getFn(ctx, id)
}

func (m *mockProductService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, int, int, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return []*domain.Product{}, 0, limit, offset, nil
}

func newProductRouter(svc *mockProductService, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	router := chi.NewRouter()
	handler := NewProductHandler(svc, zap.NewNop())
	handler.RegisterRoutes(router, authMiddleware)
	return router
}

func TestProductHandler_Create_Success(t *testing.T) {
	now := time.Now()
	svc := &mockProductService{
		createFn: func(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error) {
			return &domain.Product{
				ID: 1, Name: name, Price: price, StockQuantity: stock,
				CreatedAt: now, UpdatedAt: now,
			}, nil
		},
	}

	body := bytes.NewBufferString(`{"name":"Widget","price":"19.99","stock_quantity":50}`)
	req := httptest.NewRequest(http.MethodPost, "/products/", body)
	rec := httptest.NewRecorder()
	newProductRouter(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ProductResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Name != "Widget" || !resp.Price.Equal(decimal.RequireFromString("19.99")) {
		t.Errorf("unexpected product in response: %+v", resp)
	}
}

func TestProductHandler_Create_RejectsBadPrices(t *testing.T) {
	svc := &mockProductService{
		createFn: func(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error) {
			t.Fatal("service must not be called for invalid prices")
			return nil, nil
		},
	}
	router := newProductRouter(svc, nil)

	payloads := []string{
		`{"name":"Widget","price":"0","stock_quantity":1}`,
		`{"name":"Widget","price":"-5.00","stock_quantity":1}`,
		`{"name":"Widget","price":"10.999","stock_quantity":1}`,
	}

	for _, payload := range payloads {
		req := httptest.NewRequest(http.MethodPost, "/products/", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestProductHandler_Create_RejectsInvalidFields(t *testing.T) {
	svc := &mockProductService{
		createFn: func(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error) {
			t.Fatal("service must not be called for invalid payloads")
			return nil, nil
		},
	}
	router := newProductRouter(svc, nil)

	payloads := []string{
		`{"price":"1.00","stock_quantity":1}`,
		`{"name":"Widget","price":"1.00","stock_quantity":-1}`,
	}

	for _, payload := range payloads {
		req := httptest.NewRequest(http.MethodPost, "/products/", bytes.NewBufferString(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	svc := &mockProductService{
		getFn: func(ctx context.Context, id int64) (*domain.Product, error) {
			return nil, &domain.NotFoundError{Resource: "Product", ID: id}
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/products/7", nil)
	rec := httptest.NewRecorder()
	newProductRouter(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProductHandler_List_ReturnsPage(t *testing.T) {
	svc := &mockProductService{
		listFn: func(ctx context.Context, limit, offset int) ([]*domain.Product, int, int, int, error) {
			return []*domain.Product{
				{ID: 1, Name: "A", Price: decimal.RequireFromString("1.00"), StockQuantity: 5},
				{ID: 2, Name: "B", Price: decimal.RequireFromString("2.00"), StockQuantity: 3},
			}, 9, limit, offset, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/products/?limit=2&offset=0", nil)
	rec := httptest.NewRecorder()
	newProductRouter(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp PaginatedProductsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 9 || len(resp.Items) != 2 {
		t.Errorf("expected total 9 with 2 items, got total %d with %d items", resp.Total, len(resp.Items))
	}
}

func TestProductHandler_Create_RequiresAuthWhenConfigured(t *testing.T) {
	svc := &mockProductService{
		createFn: func(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error) {
			return &domain.Product{ID: 1, Name: name, Price: price, StockQuantity: stock}, nil
		},
	}
	secret := "test-secret"
	router := newProductRouter(svc, middleware.AuthMiddleware(secret, zap.NewNop()))

	body := `{"name":"Widget","price":"19.99","stock_quantity":50}`

	req := httptest.NewRequest(http.MethodPost, "/products/", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/products/", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 with a valid token, got %d: %s", rec.Code, rec.Body.String())
	}

	// Reads stay public even when mutations are guarded
	req = httptest.NewRequest(http.MethodGet, "/products/", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unauthenticated read, got %d", rec.Code)
	}
}
