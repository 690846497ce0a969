package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UnpaidOrderCanceller cancels online orders whose payment window has passed
type UnpaidOrderCanceller interface {
	CancelExpiredUnpaid(ctx context.Context) (int, error)
}

// PendingOrderSweepJob is the name of the unpaid order sweep
const PendingOrderSweepJob = "pending-order-sweep"

// NewPendingOrderSweep returns the job that releases stock held by unpaid
// Razorpay orders
func NewPendingOrderSweep(orders UnpaidOrderCanceller, interval time.Duration, logger *zap.Logger) Job {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return Job{
		Name:       PendingOrderSweepJob,
		Interval:   interval,
		RunOnStart: true,
		Task: func(ctx context.Context) error {
			n, err := orders.CancelExpiredUnpaid(ctx)
			if n > 0 {
				logger.Info("Released unpaid orders", zap.Int("cancelled", n))
			}
			return err
		},
	}
}
