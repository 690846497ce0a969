package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), INR)
		require.NoError(t, err)
		assert.Equal(t, INR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoney_MinorUnits(t *testing.T) {
	t.Run("converts rupees to paise", func(t *testing.T) {
		m := NewINR(decimal.RequireFromString("499.99"))
		assert.Equal(t, int64(49999), m.ToMinorUnits())
	})

	t.Run("rounds fractional paise", func(t *testing.T) {
		m := NewINR(decimal.RequireFromString("10.005"))
		assert.Equal(t, int64(1001), m.ToMinorUnits())
	})

	t.Run("converts paise back to rupees", func(t *testing.T) {
		m := MoneyFromMinorUnits(125050, INR)
		assert.Equal(t, "1250.5", m.Amount().String())
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewINR(decimal.NewFromInt(100))
	b := NewINR(decimal.NewFromInt(40))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "140.00 INR", sum.String())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())

	_, err = a.Add(MoneyFromMinorUnits(100, USD))
	assert.Error(t, err)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, "2.35", RoundMoney(decimal.RequireFromString("2.345")).String())
	assert.Equal(t, "2.34", RoundMoney(decimal.RequireFromString("2.344")).String())
}
