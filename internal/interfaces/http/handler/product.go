package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/seafresh/backend/internal/application/catalog"
	"github.com/seafresh/backend/internal/interfaces/http/middleware"
)

// ProductService is the catalog application used by the product endpoints
type ProductService interface {
	Create(ctx context.Context, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetVisible(ctx context.Context, id uuid.UUID, includeHidden bool) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, filter catalogapp.ProductListFilter) ([]catalogapp.ProductResponse, int64, error)
	Categories(ctx context.Context) ([]catalogapp.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	UpdateStock(ctx context.Context, id uuid.UUID, req catalogapp.UpdateStockRequest) (*catalogapp.ProductResponse, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, req catalogapp.UpdateAvailabilityRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductHandler handles the storefront catalog and its admin side
type ProductHandler struct {
	BaseHandler
	products ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List godoc
// @ID           listProducts
// @Summary      List available products
// @Tags         products
// @Produce      json
// @Param        search    query string false "Name or description"
// @Param        category  query string false "Category slug"
// @Param        min_price query number false "Minimum effective price"
// @Param        max_price query number false "Maximum effective price"
// @Param        featured  query bool   false "Featured only"
// @Param        sort_by   query string false "created_at, price, name or stock"
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	h.list(c, true)
}

// AdminList godoc
// @ID           listAllProducts
// @Summary      List products including hidden ones
// @Tags         admin-products
// @Produce      json
// @Param        available query bool false "Availability filter"
// @Success      200 {object} APIResponse[[]catalog.ProductResponse]
// @Router       /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	h.list(c, false)
}

func (h *ProductHandler) list(c *gin.Context, onlyAvailable bool) {
	var filter catalogapp.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if onlyAvailable {
		visible := true
		filter.Available = &visible
	}
	products, total, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getProduct
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	session := middleware.CurrentSession(c)
	product, err := h.products.GetVisible(c.Request.Context(), id, session != nil && session.IsAdmin())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Categories godoc
// @ID           listCategories
// @Summary      Categories with product counts
// @Tags         products
// @Produce      json
// @Success      200 {object} APIResponse[[]catalog.CategoryResponse]
// @Router       /products/categories [get]
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.products.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// Create godoc
// @ID           createProduct
// @Summary      Create a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalog.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @ID           updateProduct
// @Summary      Update a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.UpdateProductRequest true "Changes"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Router       /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateStock godoc
// @ID           updateProductStock
// @Summary      Set stock
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.UpdateStockRequest true "Stock"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Router       /admin/products/{id}/stock [patch]
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.UpdateStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UpdateAvailability godoc
// @ID           updateProductAvailability
// @Summary      Toggle availability and featured
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        request body catalog.UpdateAvailabilityRequest true "Flags"
// @Success      200 {object} APIResponse[catalog.ProductResponse]
// @Router       /admin/products/{id}/availability [patch]
func (h *ProductHandler) UpdateAvailability(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateAvailabilityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.products.UpdateAvailability(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @ID           deleteProduct
// @Summary      Delete a product
// @Tags         admin-products
// @Param        id path string true "Product ID"
// @Success      204
// @Router       /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
