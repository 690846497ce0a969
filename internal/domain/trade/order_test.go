package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPolicy = PricingPolicy{
	ShippingFee:           decimal.NewFromInt(50),
	FreeShippingThreshold: decimal.NewFromInt(999),
}

func testAddress() valueobject.Address {
	return valueobject.Address{
		FullName:   "Rahul Menon",
		Phone:      "9847012345",
		Line1:      "4 Beach Road",
		City:       "Kozhikode",
		State:      "Kerala",
		PostalCode: "673001",
	}
}

func testItems() []NewOrderItem {
	return []NewOrderItem{
		{ProductID: uuid.New(), Name: "Pomfret", Unit: "kg", UnitPrice: decimal.NewFromInt(650), Quantity: 1},
		{ProductID: uuid.New(), Name: "Squid Rings", Unit: "500g", UnitPrice: decimal.NewFromInt(120), Quantity: 2},
	}
}

func newRazorpayOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("SF-20261019-00001", uuid.New(), testItems(), testAddress(), PaymentMethodRazorpay, nil, testPolicy)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func eventTypes(o *Order) []string {
	types := make([]string, 0)
	for _, e := range o.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	return types
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelledByUser, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusCancelledByUser, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusCancelledByUser, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPricingPolicy_Price(t *testing.T) {
	t.Run("charges shipping below threshold", func(t *testing.T) {
		p := testPolicy.Price(decimal.NewFromInt(890), decimal.Zero)
		assert.Equal(t, "50", p.ShippingFee.String())
		assert.Equal(t, "940", p.Total.String())
	})

	t.Run("waives shipping at threshold after discount", func(t *testing.T) {
		p := testPolicy.Price(decimal.NewFromInt(1100), decimal.NewFromInt(101))
		assert.True(t, p.ShippingFee.IsZero())
		assert.Equal(t, "999", p.Total.String())
	})

	t.Run("charges shipping when discount drops below threshold", func(t *testing.T) {
		p := testPolicy.Price(decimal.NewFromInt(1000), decimal.NewFromInt(100))
		assert.Equal(t, "950", p.Total.String())
	})

	t.Run("caps discount at subtotal", func(t *testing.T) {
		p := testPolicy.Price(decimal.NewFromInt(40), decimal.NewFromInt(100))
		assert.Equal(t, "40", p.Discount.String())
		assert.Equal(t, "50", p.Total.String())
	})
}

func TestNewOrder(t *testing.T) {
	t.Run("razorpay order waits in Pending", func(t *testing.T) {
		userID := uuid.New()
		o, err := NewOrder("SF-20261019-00001", userID, testItems(), testAddress(), PaymentMethodRazorpay, nil, testPolicy)
		require.NoError(t, err)

		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
		assert.Equal(t, "890", o.Subtotal.String())
		assert.Equal(t, "940", o.Total.String())
		assert.Equal(t, 3, o.ItemCount())
		assert.Len(t, o.Items, 2)
		assert.Equal(t, o.ID, o.Items[0].OrderID)
		assert.True(t, o.AwaitsOnlinePayment())
		assert.Equal(t, []string{EventTypeOrderPlaced}, eventTypes(o))
	})

	t.Run("cod order starts Processing", func(t *testing.T) {
		o, err := NewOrder("SF-20261019-00002", uuid.New(), testItems(), testAddress(), PaymentMethodCOD, nil, testPolicy)
		require.NoError(t, err)
		assert.Equal(t, OrderStatusProcessing, o.Status)
		assert.NotNil(t, o.ProcessingAt)
		assert.False(t, o.AwaitsOnlinePayment())
	})

	t.Run("applies coupon discount", func(t *testing.T) {
		couponID := uuid.New()
		o, err := NewOrder("SF-20261019-00003", uuid.New(), testItems(), testAddress(), PaymentMethodCOD,
			&AppliedCoupon{CouponID: couponID, Code: "FRESH10", Discount: decimal.NewFromInt(89)}, testPolicy)
		require.NoError(t, err)
		assert.Equal(t, "FRESH10", o.CouponCode)
		assert.Equal(t, couponID, *o.CouponID)
		assert.Equal(t, "851", o.Total.String())
	})

	t.Run("rejects duplicate products", func(t *testing.T) {
		items := testItems()
		items[1].ProductID = items[0].ProductID
		_, err := NewOrder("SF-1", uuid.New(), items, testAddress(), PaymentMethodCOD, nil, testPolicy)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "DUPLICATE_ITEM", de.Code)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewOrder("SF-1", uuid.New(), nil, testAddress(), PaymentMethodCOD, nil, testPolicy)
		assert.Error(t, err)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		_, err := NewOrder("SF-1", uuid.New(), testItems(), testAddress(), PaymentMethod("upi"), nil, testPolicy)
		assert.Error(t, err)
	})

	t.Run("rejects invalid address", func(t *testing.T) {
		addr := testAddress()
		addr.PostalCode = ""
		_, err := NewOrder("SF-1", uuid.New(), testItems(), addr, PaymentMethodCOD, nil, testPolicy)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_ADDRESS", de.Code)
	})

	t.Run("rejects zero quantity", func(t *testing.T) {
		items := testItems()
		items[0].Quantity = 0
		_, err := NewOrder("SF-1", uuid.New(), items, testAddress(), PaymentMethodCOD, nil, testPolicy)
		assert.Error(t, err)
	})
}

func TestOrder_MarkPaid(t *testing.T) {
	t.Run("moves Pending to Processing", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.AttachGatewayOrder("order_Abc123"))
		require.NoError(t, o.MarkPaid("pay_Xyz789"))

		assert.Equal(t, OrderStatusProcessing, o.Status)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, "pay_Xyz789", o.RazorpayPaymentID)
		assert.NotNil(t, o.PaidAt)
		assert.Equal(t, []string{EventTypeOrderStatusChanged, EventTypeOrderPaid}, eventTypes(o))
	})

	t.Run("cannot be paid twice", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.MarkPaid("pay_1"))
		assert.Error(t, o.MarkPaid("pay_2"))
	})

	t.Run("late payment on cancelled order keeps status", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.CancelUnpaid())
		require.NoError(t, o.MarkPaid("pay_late"))
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.True(t, o.NeedsRefund())
	})

	t.Run("cod orders are not paid by the gateway", func(t *testing.T) {
		o, err := NewOrder("SF-2", uuid.New(), testItems(), testAddress(), PaymentMethodCOD, nil, testPolicy)
		require.NoError(t, err)
		assert.Error(t, o.MarkPaid("pay_1"))
	})

	t.Run("failed attempt can be retried", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.MarkPaymentFailed("card declined"))
		assert.Equal(t, PaymentStatusFailed, o.PaymentStatus)
		assert.True(t, o.AwaitsOnlinePayment())
		require.NoError(t, o.MarkPaid("pay_2"))
	})
}

func TestOrder_UpdateStatus(t *testing.T) {
	t.Run("walks the happy path", func(t *testing.T) {
		o, err := NewOrder("SF-3", uuid.New(), testItems(), testAddress(), PaymentMethodCOD, nil, testPolicy)
		require.NoError(t, err)

		require.NoError(t, o.UpdateStatus(OrderStatusShipped, ""))
		assert.NotNil(t, o.ShippedAt)
		require.NoError(t, o.UpdateStatus(OrderStatusDelivered, ""))
		assert.NotNil(t, o.DeliveredAt)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus, "cash collected on delivery")
	})

	t.Run("refuses skipping states", func(t *testing.T) {
		o := newRazorpayOrder(t)
		err := o.UpdateStatus(OrderStatusDelivered, "")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_STATE", de.Code)
	})

	t.Run("refuses Processing before online payment", func(t *testing.T) {
		o := newRazorpayOrder(t)
		err := o.UpdateStatus(OrderStatusProcessing, "")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "PAYMENT_REQUIRED", de.Code)
	})

	t.Run("admin cannot use the customer cancellation status", func(t *testing.T) {
		o := newRazorpayOrder(t)
		assert.Error(t, o.UpdateStatus(OrderStatusCancelledByUser, ""))
	})

	t.Run("admin cancel of a paid order needs a refund", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.MarkPaid("pay_1"))
		o.ClearDomainEvents()

		require.NoError(t, o.UpdateStatus(OrderStatusCancelled, "Out of stock"))
		assert.Equal(t, "Out of stock", o.CancelReason)
		assert.True(t, o.NeedsRefund())
		assert.Equal(t, []string{EventTypeOrderStatusChanged, EventTypeOrderCancelled}, eventTypes(o))
		ev := o.GetDomainEvents()[1].(*OrderCancelledEvent)
		assert.True(t, ev.NeedsRefund)
		assert.False(t, ev.ByCustomer)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.UpdateStatus(OrderStatusCancelled, ""))
		assert.Error(t, o.UpdateStatus(OrderStatusProcessing, ""))
	})
}

func TestOrder_CancelByUser(t *testing.T) {
	t.Run("owner can cancel before shipping", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.CancelByUser(o.UserID, ""))
		assert.Equal(t, OrderStatusCancelledByUser, o.Status)
		assert.Equal(t, "Cancelled by customer", o.CancelReason)
		assert.False(t, o.NeedsRefund())
	})

	t.Run("other users get not found", func(t *testing.T) {
		o := newRazorpayOrder(t)
		assert.ErrorIs(t, o.CancelByUser(uuid.New(), ""), shared.ErrNotFound)
	})

	t.Run("shipped orders cannot be cancelled by the customer", func(t *testing.T) {
		o, err := NewOrder("SF-4", uuid.New(), testItems(), testAddress(), PaymentMethodCOD, nil, testPolicy)
		require.NoError(t, err)
		require.NoError(t, o.UpdateStatus(OrderStatusShipped, ""))
		assert.Error(t, o.CancelByUser(o.UserID, "changed my mind"))
	})
}

func TestOrder_Refund(t *testing.T) {
	paidCancelled := func(t *testing.T) *Order {
		o := newRazorpayOrder(t)
		require.NoError(t, o.MarkPaid("pay_1"))
		require.NoError(t, o.CancelByUser(o.UserID, "ordered twice"))
		o.ClearDomainEvents()
		return o
	}

	t.Run("full refund lifecycle", func(t *testing.T) {
		o := paidCancelled(t)
		require.NoError(t, o.StartRefund("rfnd_1", o.Total))
		assert.Equal(t, PaymentStatusRefundPending, o.PaymentStatus)
		require.NoError(t, o.CompleteRefund(""))
		assert.Equal(t, PaymentStatusRefunded, o.PaymentStatus)
		assert.NotNil(t, o.RefundedAt)
		assert.Equal(t, []string{EventTypeOrderRefundInitiated, EventTypeOrderRefunded}, eventTypes(o))

		require.NoError(t, o.CompleteRefund("rfnd_1"), "completing twice is a no-op")
	})

	t.Run("rejects refund above paid amount", func(t *testing.T) {
		o := paidCancelled(t)
		assert.Error(t, o.StartRefund("rfnd_1", o.Total.Add(decimal.NewFromInt(1))))
	})

	t.Run("rejects refund of an active order", func(t *testing.T) {
		o := newRazorpayOrder(t)
		require.NoError(t, o.MarkPaid("pay_1"))
		assert.Error(t, o.ValidateRefund(o.Total))
	})

	t.Run("failed refund can be retried", func(t *testing.T) {
		o := paidCancelled(t)
		require.NoError(t, o.StartRefund("rfnd_1", decimal.NewFromInt(100)))
		require.NoError(t, o.FailRefund())
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		assert.True(t, o.RefundAmount.IsZero())
		require.NoError(t, o.StartRefund("rfnd_2", o.Total))
	})
}

func TestOrder_IsExpiredUnpaid(t *testing.T) {
	o := newRazorpayOrder(t)
	now := o.CreatedAt.Add(31 * time.Minute)
	assert.True(t, o.IsExpiredUnpaid(now, 30*time.Minute))
	assert.False(t, o.IsExpiredUnpaid(now, time.Hour))

	require.NoError(t, o.MarkPaid("pay_1"))
	assert.False(t, o.IsExpiredUnpaid(now, 30*time.Minute))
}
