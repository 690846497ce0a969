package catalog

import (
	"testing"

	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	p, err := NewProduct("Seer Fish Steaks", CategoryFish, decimal.NewFromInt(899), "kg")
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid inputs", func(t *testing.T) {
		product, err := NewProduct("  Tiger Prawns (Large) ", CategoryPrawns, decimal.NewFromInt(749), "500g")
		require.NoError(t, err)

		assert.Equal(t, "Tiger Prawns (Large)", product.Name)
		assert.Equal(t, "tiger-prawns-large", product.Slug)
		assert.Equal(t, CategoryPrawns, product.Category)
		assert.True(t, product.IsAvailable)
		assert.Equal(t, FreshnessFresh, product.Freshness)
		assert.Equal(t, 0, product.Stock)
		assert.Equal(t, 1, product.GetVersion())
	})

	t.Run("publishes ProductCreated event", func(t *testing.T) {
		product, err := NewProduct("Mud Crab", CategoryCrabs, decimal.NewFromInt(1200), "kg")
		require.NoError(t, err)

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*ProductCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, product.ID, event.ProductID)
		assert.Equal(t, AggregateTypeProduct, event.AggregateType())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("  ", CategoryFish, decimal.NewFromInt(10), "kg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with unknown category", func(t *testing.T) {
		_, err := NewProduct("Squid", Category("cephalopods"), decimal.NewFromInt(10), "kg")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_CATEGORY", de.Code)
	})

	t.Run("fails with zero price", func(t *testing.T) {
		_, err := NewProduct("Squid", CategoryOther, decimal.Zero, "kg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Price must be positive")
	})

	t.Run("fails with empty unit", func(t *testing.T) {
		_, err := NewProduct("Squid", CategoryOther, decimal.NewFromInt(10), "")
		require.Error(t, err)
	})
}

func TestProduct_SetPricing(t *testing.T) {
	t.Run("applies a discount price", func(t *testing.T) {
		p := newTestProduct(t)
		discount := decimal.NewFromInt(799)

		require.NoError(t, p.SetPricing(decimal.NewFromInt(899), &discount, "kg"))

		assert.True(t, p.HasDiscount())
		assert.True(t, p.EffectivePrice().Equal(discount))
		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductPriceChanged, events[0].EventType())
	})

	t.Run("no price event when the effective price is unchanged", func(t *testing.T) {
		p := newTestProduct(t)
		require.NoError(t, p.SetPricing(decimal.NewFromInt(899), nil, "1 kg"))
		assert.Empty(t, p.GetDomainEvents())
		assert.Equal(t, "1 kg", p.Unit)
	})

	t.Run("rejects a discount at or above the price", func(t *testing.T) {
		p := newTestProduct(t)
		discount := decimal.NewFromInt(899)
		err := p.SetPricing(decimal.NewFromInt(899), &discount, "kg")
		require.Error(t, err)
		assert.Nil(t, p.DiscountPrice)
	})
}

func TestProduct_Stock(t *testing.T) {
	p := newTestProduct(t)

	t.Run("rejects negative stock", func(t *testing.T) {
		assert.Error(t, p.SetStock(-1))
	})

	t.Run("records stock change", func(t *testing.T) {
		require.NoError(t, p.SetStock(12))
		assert.Equal(t, 12, p.Stock)
		require.Len(t, p.GetDomainEvents(), 1)
		ev := p.GetDomainEvents()[0].(*ProductStockChangedEvent)
		assert.Equal(t, 0, ev.OldStock)
		assert.Equal(t, 12, ev.NewStock)
	})

	t.Run("CanOrder checks availability and quantity", func(t *testing.T) {
		assert.NoError(t, p.CanOrder(12))
		assert.Error(t, p.CanOrder(13))
		assert.Error(t, p.CanOrder(0))

		p.SetAvailability(false)
		err := p.CanOrder(1)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", de.Code)
	})

	t.Run("IsLowStock compares against threshold", func(t *testing.T) {
		assert.True(t, p.IsLowStock(12))
		assert.False(t, p.IsLowStock(5))
	})
}

func TestProduct_SetImages(t *testing.T) {
	p := newTestProduct(t)

	require.NoError(t, p.SetImages([]string{" https://cdn.example.com/a.jpg ", "", "https://cdn.example.com/b.jpg"}))
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, p.Images)
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.PrimaryImage())

	tooMany := make([]string, 9)
	for i := range tooMany {
		tooMany[i] = "https://cdn.example.com/x.jpg"
	}
	assert.Error(t, p.SetImages(tooMany))
}

func TestProduct_Update(t *testing.T) {
	p := newTestProduct(t)
	version := p.GetVersion()

	require.NoError(t, p.Update("King Fish Steaks", "Cleaned, cut into steaks", CategoryFish, "Kochi", FreshnessFrozen))

	assert.Equal(t, "king-fish-steaks", p.Slug)
	assert.Equal(t, FreshnessFrozen, p.Freshness)
	assert.Equal(t, "Kochi", p.Origin)
	assert.Equal(t, version+1, p.GetVersion())

	assert.Error(t, p.Update("King Fish", "", CategoryFish, "", Freshness("smoked")))
}

func TestCategory_IsValid(t *testing.T) {
	for _, c := range AllCategories() {
		assert.True(t, c.IsValid(), string(c))
	}
	assert.False(t, Category("").IsValid())
}
