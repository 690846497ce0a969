package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/catalog"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/payment"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceRenderer renders an order invoice as PDF
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, order *trade.Order) ([]byte, error)
}

// OrderServiceConfig holds shop rules for checkout
type OrderServiceConfig struct {
	Pricing         trade.PricingPolicy
	MaxItemQuantity int
	CODEnabled      bool
	PendingOrderTTL time.Duration
	SweepBatchSize  int
}

// OrderService handles checkout and order lifecycle operations
type OrderService struct {
	orderRepo      trade.OrderRepository
	productRepo    catalog.ProductRepository
	couponRepo     promotion.CouponRepository
	userRepo       identity.UserRepository
	gateway        payment.Gateway
	invoices       InvoiceRenderer
	eventPublisher shared.EventPublisher
	config         OrderServiceConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	couponRepo promotion.CouponRepository,
	userRepo identity.UserRepository,
	gateway payment.Gateway,
	config OrderServiceConfig,
	logger *zap.Logger,
) *OrderService {
	if config.MaxItemQuantity <= 0 {
		config.MaxItemQuantity = 20
	}
	if config.PendingOrderTTL <= 0 {
		config.PendingOrderTTL = 30 * time.Minute
	}
	if config.SweepBatchSize <= 0 {
		config.SweepBatchSize = 100
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		config:      config,
		logger:      logger,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetInvoiceRenderer sets the PDF renderer used by Invoice
func (s *OrderService) SetInvoiceRenderer(renderer InvoiceRenderer) {
	s.invoices = renderer
}

type pricedCart struct {
	lines   []trade.NewOrderItem
	coupon  *trade.AppliedCoupon
	pricing trade.Pricing
}

func (s *OrderService) priceCart(ctx context.Context, userID uuid.UUID, items []CartItemRequest, couponCode string) (*pricedCart, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Cart is empty")
	}
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		if seen[it.ProductID] {
			return nil, shared.NewDomainError("DUPLICATE_ITEM", "Each product can appear only once per order")
		}
		seen[it.ProductID] = true
		if it.Quantity < 1 || it.Quantity > s.config.MaxItemQuantity {
			return nil, shared.NewDomainError("INVALID_QUANTITY",
				fmt.Sprintf("Quantity must be between 1 and %d", s.config.MaxItemQuantity))
		}
		ids = append(ids, it.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	cart := &pricedCart{lines: make([]trade.NewOrderItem, 0, len(items))}
	subtotal := decimal.Zero
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "A product in your cart is no longer available")
		}
		if err := p.CanOrder(it.Quantity); err != nil {
			return nil, err
		}
		price := p.EffectivePrice()
		cart.lines = append(cart.lines, trade.NewOrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			ImageURL:  p.PrimaryImage(),
			Unit:      p.Unit,
			UnitPrice: price,
			Quantity:  it.Quantity,
		})
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	subtotal = valueobject.RoundMoney(subtotal)

	discount := decimal.Zero
	if code := promotion.NormalizeCode(couponCode); code != "" {
		coupon, err := s.couponRepo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, promotion.ErrCouponNotFound
			}
			return nil, err
		}
		discount, err = coupon.Validate(subtotal, userID, s.now())
		if err != nil {
			return nil, err
		}
		cart.coupon = &trade.AppliedCoupon{CouponID: coupon.ID, Code: coupon.Code, Discount: discount}
	}

	cart.pricing = s.config.Pricing.Price(subtotal, discount)
	return cart, nil
}

// Quote prices a cart with current product prices and an optional coupon
func (s *OrderService) Quote(ctx context.Context, userID uuid.UUID, req QuoteRequest) (*QuoteResponse, error) {
	cart, err := s.priceCart(ctx, userID, req.Items, req.CouponCode)
	if err != nil {
		return nil, err
	}

	items := make([]QuoteItemResponse, len(cart.lines))
	for i, l := range cart.lines {
		items[i] = QuoteItemResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			ImageURL:  l.ImageURL,
			Unit:      l.Unit,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Amount:    valueobject.RoundMoney(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))),
		}
	}

	threshold := s.config.Pricing.FreeShippingThreshold
	toFree := decimal.Zero
	if threshold.IsPositive() {
		remaining := threshold.Sub(cart.pricing.Subtotal.Sub(cart.pricing.Discount))
		if remaining.IsPositive() {
			toFree = remaining
		}
	}

	resp := &QuoteResponse{
		Items:                 items,
		Subtotal:              cart.pricing.Subtotal,
		Discount:              cart.pricing.Discount,
		ShippingFee:           cart.pricing.ShippingFee,
		Total:                 cart.pricing.Total,
		FreeShippingThreshold: threshold,
		AmountToFreeShipping:  toFree,
	}
	if cart.coupon != nil {
		resp.CouponCode = cart.coupon.Code
	}
	return resp, nil
}

// Place places an order. Stock is reserved and the coupon redeemed atomically;
// Razorpay orders wait in Pending until the payment is verified.
func (s *OrderService) Place(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderResponse, error) {
	method := trade.PaymentMethod(req.PaymentMethod)
	if method == trade.PaymentMethodCOD && !s.config.CODEnabled {
		return nil, shared.NewDomainError("COD_DISABLED", "Cash on delivery is not available")
	}
	if method == trade.PaymentMethodRazorpay && s.gateway == nil {
		return nil, shared.NewDomainError("GATEWAY_UNAVAILABLE", "Online payments are not configured")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.ErrForbidden
	}

	address, err := valueobject.NewAddress(req.ShippingAddress)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
	}

	cart, err := s.priceCart(ctx, userID, req.Items, req.CouponCode)
	if err != nil {
		return nil, err
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewOrder(orderNumber, userID, cart.lines, address, method, cart.coupon, s.config.Pricing)
	if err != nil {
		return nil, err
	}
	if err := order.SetNotes(req.Notes); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Place(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("payment_method", string(method)),
		zap.String("total", order.Total.StringFixed(2)))

	s.publish(ctx, order)

	if req.SaveAddress {
		if err := user.SetDefaultAddress(address); err == nil {
			if err := s.userRepo.Update(ctx, user); err != nil {
				s.logger.Warn("failed to save default address", zap.String("user_id", userID.String()), zap.Error(err))
			}
		}
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Get returns an order visible to the caller. Customers only see their own orders.
func (s *OrderService) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*OrderResponse, error) {
	order, err := s.findVisible(ctx, id, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

func (s *OrderService) findVisible(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !order.IsOwnedBy(userID) {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

// ListMine lists the caller's orders
func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	f, err := toOrderFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	f.UserID = &userID
	orders, total, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderListItemResponses(orders), total, nil
}

// List lists all orders (admin)
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	f, err := toOrderFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	orders, total, err := s.orderRepo.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderListItemResponses(orders), total, nil
}

func toOrderFilter(filter OrderListFilter) (trade.OrderFilter, error) {
	f := trade.NewOrderFilter()
	if filter.Status != "" {
		status := trade.OrderStatus(filter.Status)
		if !status.IsValid() {
			return f, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", filter.Status))
		}
		f.Status = status
	}
	f.PaymentStatus = trade.PaymentStatus(filter.PaymentStatus)
	f.PaymentMethod = trade.PaymentMethod(filter.PaymentMethod)
	f.Search = strings.TrimSpace(filter.Search)
	f.From = filter.From
	if filter.To != nil {
		end := filter.To.AddDate(0, 0, 1)
		f.To = &end
	}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.SortBy != "" {
		f.SortBy = filter.SortBy
	}
	if filter.SortOrder != "" {
		f.SortOrder = filter.SortOrder
	}
	return f, nil
}

// Cancel cancels the caller's order while it has not shipped. Reserved stock
// is returned and a captured payment is refunded in full.
func (s *OrderService) Cancel(ctx context.Context, id, userID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.CancelByUser(userID, req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveAndRestock(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order)
	s.refundIfNeeded(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// UpdateStatus moves an order along the fulfilment lifecycle (admin)
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	target := trade.OrderStatus(req.Status)
	if err := order.UpdateStatus(target, req.Reason); err != nil {
		return nil, err
	}

	if target.IsCancelled() {
		err = s.orderRepo.SaveAndRestock(ctx, order)
	} else {
		err = s.orderRepo.SaveWithLock(ctx, order)
	}
	if err != nil {
		return nil, err
	}

	if target == trade.OrderStatusDelivered && order.DeliveredAt != nil {
		if err := s.userRepo.TouchOrderCompletion(ctx, order.UserID, *order.DeliveredAt); err != nil {
			s.logger.Error("failed to record order completion",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
		}
	}

	s.logger.Info("order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status.String()))

	s.publish(ctx, order)
	s.refundIfNeeded(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// Refund refunds a cancelled, paid order through the gateway (admin)
func (s *OrderService) Refund(ctx context.Context, id uuid.UUID, req RefundOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	amount := order.RefundableAmount()
	if req.Amount != nil {
		amount = valueobject.RoundMoney(*req.Amount)
	}
	if err := issueRefund(ctx, s.gateway, order, amount, req.Reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	response := ToOrderResponse(order)
	return &response, nil
}

// CancelExpiredUnpaid cancels online orders whose payment never completed and
// returns how many were cancelled
func (s *OrderService) CancelExpiredUnpaid(ctx context.Context) (int, error) {
	now := s.now()
	orders, err := s.orderRepo.FindExpiredUnpaid(ctx, now.Add(-s.config.PendingOrderTTL), s.config.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, order := range orders {
		if !order.IsExpiredUnpaid(now, s.config.PendingOrderTTL) {
			continue
		}
		if err := order.CancelUnpaid(); err != nil {
			continue
		}
		if err := s.orderRepo.SaveAndRestock(ctx, order); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			return cancelled, fmt.Errorf("cancel unpaid order %s: %w", order.OrderNumber, err)
		}
		s.publish(ctx, order)
		cancelled++
	}
	if cancelled > 0 {
		s.logger.Info("cancelled unpaid orders", zap.Int("count", cancelled))
	}
	return cancelled, nil
}

// Invoice renders the invoice PDF of an order visible to the caller
func (s *OrderService) Invoice(ctx context.Context, id, userID uuid.UUID, isAdmin bool) ([]byte, string, error) {
	if s.invoices == nil {
		return nil, "", shared.NewDomainError("INVOICE_UNAVAILABLE", "Invoices are not available")
	}
	order, err := s.findVisible(ctx, id, userID, isAdmin)
	if err != nil {
		return nil, "", err
	}
	if order.Status.IsCancelled() && !order.IsPaid() && order.PaymentStatus != trade.PaymentStatusRefunded {
		return nil, "", shared.NewDomainError("INVOICE_UNAVAILABLE", "Cancelled orders have no invoice")
	}
	pdf, err := s.invoices.RenderInvoice(ctx, order)
	if err != nil {
		return nil, "", fmt.Errorf("render invoice: %w", err)
	}
	return pdf, "invoice-" + order.OrderNumber + ".pdf", nil
}

func (s *OrderService) refundIfNeeded(ctx context.Context, order *trade.Order) {
	if !order.NeedsRefund() {
		return
	}
	if err := issueRefund(ctx, s.gateway, order, order.RefundableAmount(), order.CancelReason); err != nil {
		s.logger.Error("automatic refund failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		s.logger.Error("failed to save refund",
			zap.String("order_number", order.OrderNumber),
			zap.String("refund_id", order.RefundID),
			zap.Error(err))
		return
	}
	s.publish(ctx, order)
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, order); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
}

// issueRefund submits a refund to the gateway and records it on the order.
// Instant refunds are completed immediately; others finish via webhook.
func issueRefund(ctx context.Context, gateway payment.Gateway, order *trade.Order, amount decimal.Decimal, reason string) error {
	if gateway == nil {
		return shared.NewDomainError("GATEWAY_UNAVAILABLE", "Online payments are not configured")
	}
	if err := order.ValidateRefund(amount); err != nil {
		return err
	}
	notes := map[string]string{"order_number": order.OrderNumber}
	if reason != "" {
		notes["reason"] = reason
	}
	refund, err := gateway.Refund(ctx, payment.RefundRequest{
		PaymentID:   order.RazorpayPaymentID,
		AmountPaise: valueobject.NewINR(amount).ToMinorUnits(),
		Notes:       notes,
	})
	if err != nil {
		return fmt.Errorf("refund payment %s: %w", order.RazorpayPaymentID, err)
	}
	if err := order.StartRefund(refund.ID, amount); err != nil {
		return err
	}
	if refund.Status == "processed" {
		return order.CompleteRefund(refund.ID)
	}
	return nil
}
