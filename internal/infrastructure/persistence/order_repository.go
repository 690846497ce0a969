package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/promotion"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/seafresh/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// shopZone is the calendar used for order numbers
var shopZone = time.FixedZone("IST", 5*60*60+30*60)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db, now: time.Now}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("product_name ASC")
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderNumber finds an order by its order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	return r.findOne(ctx, "order_number = ?", orderNumber)
}

// FindByGatewayOrderID finds the order a Razorpay order was created for
func (r *GormOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*trade.Order, error) {
	if gatewayOrderID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "razorpay_order_id = ?", gatewayOrderID)
}

// FindByGatewayPaymentID finds the order paid by a Razorpay payment
func (r *GormOrderRepository) FindByGatewayPaymentID(ctx context.Context, paymentID string) (*trade.Order, error) {
	if paymentID == "" {
		return nil, shared.ErrNotFound
	}
	return r.findOne(ctx, "razorpay_payment_id = ?", paymentID)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, arg any) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where(query, arg).
		First(&model).Error; err != nil {
		return nil, translate(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds orders matching the filter and returns the total count
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]*trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(order_number) LIKE ? ESCAPE '\' OR LOWER(coupon_code) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := query.
		Preload("Items", preloadItems).
		Order(orderClause(filter.SortBy, filter.SortOrder, OrderSortFields, "created_at")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toOrders(rows), total, nil
}

// FindExpiredUnpaid finds online orders still awaiting payment that were created before cutoff
func (r *GormOrderRepository) FindExpiredUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*trade.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("payment_method = ? AND status = ? AND payment_status IN ? AND created_at < ?",
			trade.PaymentMethodRazorpay, trade.OrderStatusPending,
			[]trade.PaymentStatus{trade.PaymentStatusPending, trade.PaymentStatusFailed}, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// Place inserts a new order, reserving stock and redeeming the coupon in the
// same transaction. The guards are conditional updates, so two orders racing
// for the last unit cannot both succeed.
func (r *GormOrderRepository) Place(ctx context.Context, order *trade.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.now()
		for _, item := range order.Items {
			result := tx.Model(&models.ProductModel{}).
				Where("id = ? AND is_available = ? AND stock >= ?", item.ProductID, true, item.Quantity).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock - ?", item.Quantity),
					"updated_at": now,
				})
			if result.Error != nil {
				return fmt.Errorf("reserve stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return shared.NewDomainError(shared.ErrInsufficientStock.Code,
					fmt.Sprintf("Only limited stock is left for %s", item.ProductName))
			}
		}

		if order.CouponID != nil {
			result := tx.Model(&models.CouponModel{}).
				Where("id = ? AND is_active = ? AND (max_uses = 0 OR used_count < max_uses)", *order.CouponID, true).
				Updates(map[string]any{
					"used_count": gorm.Expr("used_count + 1"),
					"updated_at": now,
				})
			if result.Error != nil {
				return fmt.Errorf("redeem coupon: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return promotion.ErrCouponExhausted
			}
		}

		if err := tx.Create(models.OrderModelFromDomain(order)).Error; err != nil {
			return fmt.Errorf("insert order: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.MarkStored()
	return nil
}

// SaveWithLock updates the order header. The stored row must still carry the
// version the order was loaded with, however many mutations happened since.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	if err := r.saveHeader(r.db.WithContext(ctx), order); err != nil {
		return err
	}
	order.MarkStored()
	return nil
}

// SaveAndRestock updates the order and returns its reserved stock in one transaction
func (r *GormOrderRepository) SaveAndRestock(ctx context.Context, order *trade.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveHeader(tx, order); err != nil {
			return err
		}
		now := r.now()
		for _, item := range order.Items {
			// a product deleted since the order was placed has nothing to restock
			if err := tx.Model(&models.ProductModel{}).
				Where("id = ?", item.ProductID).
				Updates(map[string]any{
					"stock":      gorm.Expr("stock + ?", item.Quantity),
					"updated_at": now,
				}).Error; err != nil {
				return fmt.Errorf("restock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.MarkStored()
	return nil
}

func (r *GormOrderRepository) saveHeader(tx *gorm.DB, order *trade.Order) error {
	// an order with nothing new to write is a copy that was already saved
	if !order.HasChanges() {
		return shared.ErrConcurrencyConflict
	}
	model := models.OrderModelFromDomain(order)
	result := tx.Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.StoredVersion()).
		Select("*").
		Omit(clause.Associations, "id", "created_at", "order_number", "user_id").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("update order: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GenerateOrderNumber issues SF-YYYYMMDD-NNNNN from a per-day counter row
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	day := r.now().In(shopZone).Format("20060102")
	var seq models.OrderSequenceModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{"last": gorm.Expr("order_sequences.last + 1")}),
		}).Create(&models.OrderSequenceModel{Day: day, Last: 1}).Error; err != nil {
			return err
		}
		return tx.First(&seq, "day = ?", day).Error
	})
	if err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	return fmt.Sprintf("SF-%s-%05d", day, seq.Last), nil
}

func toOrders(rows []models.OrderModel) []*trade.Order {
	out := make([]*trade.Order, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}
