package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/seafresh/backend/internal/domain/catalog"
	"github.com/seafresh/backend/internal/domain/identity"
	"github.com/seafresh/backend/internal/domain/shared/valueobject"
	"github.com/seafresh/backend/internal/domain/trade"
	"github.com/seafresh/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with every table migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, catalog.CategoryFish, decimal.RequireFromString(price), "kg")
	require.NoError(t, err)
	require.NoError(t, p.SetStock(stock))
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(name, email, "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), u))
	return u
}

func testAddress() valueobject.Address {
	return valueobject.Address{
		FullName:   "Anita Rao",
		Phone:      "9876543210",
		Line1:      "12 Harbour Road",
		City:       "Kochi",
		State:      "Kerala",
		PostalCode: "682001",
	}
}

func newTestOrder(t *testing.T, number string, userID uuid.UUID, method trade.PaymentMethod, products ...*catalog.Product) *trade.Order {
	t.Helper()
	items := make([]trade.NewOrderItem, len(products))
	for i, p := range products {
		items[i] = trade.NewOrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Unit:      p.Unit,
			UnitPrice: p.EffectivePrice(),
			Quantity:  1,
		}
	}
	order, err := trade.NewOrder(number, userID, items, testAddress(), method, nil, trade.PricingPolicy{
		ShippingFee:           decimal.NewFromInt(50),
		FreeShippingThreshold: decimal.NewFromInt(999),
	})
	require.NoError(t, err)
	return order
}

func stockOf(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var m models.ProductModel
	require.NoError(t, db.First(&m, "id = ?", id).Error)
	return m.Stock
}
