package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/seafresh/backend/internal/application/trade"
)

// OrderService is the trade application used by the order endpoints
type OrderService interface {
	Quote(ctx context.Context, userID uuid.UUID, req tradeapp.QuoteRequest) (*tradeapp.QuoteResponse, error)
	Place(ctx context.Context, userID uuid.UUID, req tradeapp.PlaceOrderRequest) (*tradeapp.OrderResponse, error)
	Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*tradeapp.OrderResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID, filter tradeapp.OrderListFilter) ([]tradeapp.OrderListItemResponse, int64, error)
	List(ctx context.Context, filter tradeapp.OrderListFilter) ([]tradeapp.OrderListItemResponse, int64, error)
	Cancel(ctx context.Context, id, userID uuid.UUID, req tradeapp.CancelOrderRequest) (*tradeapp.OrderResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req tradeapp.UpdateOrderStatusRequest) (*tradeapp.OrderResponse, error)
	Refund(ctx context.Context, id uuid.UUID, req tradeapp.RefundOrderRequest) (*tradeapp.OrderResponse, error)
	Invoice(ctx context.Context, id, userID uuid.UUID, isAdmin bool) ([]byte, string, error)
}

// OrderHandler handles checkout and order management
type OrderHandler struct {
	BaseHandler
	orders OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Quote godoc
// @ID           quoteCart
// @Summary      Price a cart
// @Description  Subtotal, coupon discount, shipping and total at current prices, without placing an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body trade.QuoteRequest true "Cart"
// @Success      200 {object} APIResponse[trade.QuoteResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /orders/quote [post]
func (h *OrderHandler) Quote(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req tradeapp.QuoteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.orders.Quote(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Place godoc
// @ID           placeOrder
// @Summary      Place an order
// @Description  COD orders start Processing; Razorpay orders stay Pending until the payment is verified
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body trade.PlaceOrderRequest true "Order"
// @Success      201 {object} APIResponse[trade.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var req tradeapp.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orders.Place(c.Request.Context(), session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// ListMine godoc
// @ID           listMyOrders
// @Summary      My orders
// @Tags         orders
// @Produce      json
// @Param        status query string false "Order status"
// @Success      200 {object} APIResponse[[]trade.OrderListItemResponse]
// @Router       /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	var filter tradeapp.OrderListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	orders, total, err := h.orders.ListMine(c.Request.Context(), session.UserID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get godoc
// @ID           getOrder
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id, session.UserID, session.IsAdmin())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel godoc
// @ID           cancelOrder
// @Summary      Cancel my order
// @Description  Allowed while Pending or Processing; paid orders are refunded in full
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body trade.CancelOrderRequest false "Reason"
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), id, session.UserID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Invoice godoc
// @ID           getOrderInvoice
// @Summary      Invoice PDF
// @Tags         orders
// @Produce      application/pdf
// @Param        id path string true "Order ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	session, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.orders.Invoice(c.Request.Context(), id, session.UserID, session.IsAdmin())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// List godoc
// @ID           listOrders
// @Summary      List all orders
// @Tags         admin-orders
// @Produce      json
// @Param        status         query string false "Order status"
// @Param        payment_status query string false "Payment status"
// @Param        search         query string false "Order number"
// @Param        from           query string false "From date (YYYY-MM-DD)"
// @Param        to             query string false "To date (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]trade.OrderListItemResponse]
// @Router       /admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter tradeapp.OrderListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// UpdateStatus godoc
// @ID           updateOrderStatus
// @Summary      Move an order to another status
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body trade.UpdateOrderStatusRequest true "Status"
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Refund godoc
// @ID           refundOrder
// @Summary      Refund a cancelled order
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID"
// @Param        request body trade.RefundOrderRequest false "Amount and reason"
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /admin/orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.RefundOrderRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orders.Refund(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
