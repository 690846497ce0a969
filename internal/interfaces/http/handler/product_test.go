package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/seafresh/backend/internal/application/catalog"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) GetVisible(ctx context.Context, id uuid.UUID, includeHidden bool) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, includeHidden)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) List(ctx context.Context, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalogapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductService) Categories(ctx context.Context) ([]catalogapp.CategoryResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalogapp.CategoryResponse), args.Error(1)
}

func (m *mockProductService) Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) UpdateStock(ctx context.Context, id uuid.UUID, req catalogapp.UpdateStockRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) UpdateAvailability(ctx context.Context, id uuid.UUID, req catalogapp.UpdateAvailabilityRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func productRoutes(svc *mockProductService, s *identity.Session) http.Handler {
	h := NewProductHandler(svc)
	router := newRouter(s)
	router.GET("/products", h.List)
	router.GET("/products/categories", h.Categories)
	router.GET("/products/:id", h.Get)
	router.GET("/admin/products", h.AdminList)
	router.POST("/admin/products", h.Create)
	router.PUT("/admin/products/:id", h.Update)
	router.PATCH("/admin/products/:id/stock", h.UpdateStock)
	router.PATCH("/admin/products/:id/availability", h.UpdateAvailability)
	router.DELETE("/admin/products/:id", h.Delete)
	return router
}

func TestProductHandler_List(t *testing.T) {
	t.Run("storefront only lists available products", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(f catalogapp.ProductListFilter) bool {
			return f.Available != nil && *f.Available && f.Category == "prawns" &&
				f.MinPrice != nil && f.MinPrice.Equal(decimal.NewFromInt(200)) && f.SortBy == "price"
		})).Return([]catalogapp.ProductResponse{{Name: "Tiger Prawns"}}, int64(1), nil)

		w := serve(productRoutes(svc, nil), http.MethodGet, "/products?category=prawns&min_price=200&sort_by=price&available=false")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("admin list keeps the availability filter", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("List", mock.Anything, mock.MatchedBy(func(f catalogapp.ProductListFilter) bool {
			return f.Available != nil && !*f.Available
		})).Return([]catalogapp.ProductResponse{}, int64(0), nil)

		w := serve(productRoutes(svc, adminSession()), http.MethodGet, "/admin/products?available=false")

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad sort field", func(t *testing.T) {
		w := serve(productRoutes(new(mockProductService), nil), http.MethodGet, "/products?sort_by=rating")
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})
}

func TestProductHandler_Get(t *testing.T) {
	id := uuid.New()

	t.Run("hidden products are not found for customers", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("GetVisible", mock.Anything, id, false).Return(nil, shared.ErrNotFound)

		w := serve(productRoutes(svc, customerSession()), http.MethodGet, "/products/"+id.String())

		requireErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("admins see hidden products", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("GetVisible", mock.Anything, id, true).Return(&catalogapp.ProductResponse{ID: id, IsAvailable: false}, nil)

		w := serve(productRoutes(svc, adminSession()), http.MethodGet, "/products/"+id.String())

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("categories route is not shadowed by :id", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("Categories", mock.Anything).Return([]catalogapp.CategoryResponse{{Slug: "fish", Name: "Fish", Count: 4}}, nil)

		w := serve(productRoutes(svc, nil), http.MethodGet, "/products/categories")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":4`)
	})
}

func TestProductHandler_Admin(t *testing.T) {
	id := uuid.New()
	svc := new(mockProductService)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(r catalogapp.CreateProductRequest) bool {
		return r.Name == "Seer Fish" && r.Price.Equal(decimal.RequireFromString("899.50"))
	})).Return(&catalogapp.ProductResponse{ID: id, Name: "Seer Fish"}, nil)
	svc.On("UpdateStock", mock.Anything, id, mock.Anything).Return(&catalogapp.ProductResponse{ID: id, Stock: 0}, nil)
	svc.On("Delete", mock.Anything, id).Return(nil)
	router := productRoutes(svc, adminSession())

	w := doJSON(router, http.MethodPost, "/admin/products", map[string]any{
		"name": "Seer Fish", "category": "fish", "price": "899.50", "unit": "kg", "stock": 12,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodPost, "/admin/products", map[string]any{"name": "No price"})
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = doJSON(router, http.MethodPatch, "/admin/products/"+id.String()+"/stock", map[string]any{"stock": 0})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPatch, "/admin/products/"+id.String()+"/stock", map[string]any{"stock": -1})
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = doJSON(router, http.MethodDelete, "/admin/products/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
