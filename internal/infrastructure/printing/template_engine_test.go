package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "Rupees Zero Only"},
		{"7", "Rupees Seven Only"},
		{"50", "Rupees Fifty Only"},
		{"999", "Rupees Nine Hundred Ninety Nine Only"},
		{"1250.50", "Rupees One Thousand Two Hundred Fifty and Fifty Paise Only"},
		{"125050.5", "Rupees One Lakh Twenty Five Thousand Fifty and Fifty Paise Only"},
		{"23400000", "Rupees Two Crore Thirty Four Lakh Only"},
		{"0.05", "Rupees Zero and Five Paise Only"},
		{"-12", "Minus Rupees Twelve Only"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, amountInWords(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestTemplateEngine_Helpers(t *testing.T) {
	e := NewTemplateEngine()

	assert.Equal(t, "₹1,250.50", e.formatINR(decimal.RequireFromString("1250.5")))
	assert.Equal(t, "₹0.00", e.formatINR(decimal.Zero))
	assert.Equal(t, "-₹50.00", e.formatINR(decimal.NewFromInt(-50)))

	assert.Equal(t, "Refund Pending", e.label("refund_pending"))
	assert.Equal(t, "Cod", e.label("cod"))

	// 20:00 UTC is the next day in India
	ts := time.Date(2026, 10, 18, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "19 Oct 2026", formatDate(ts))
	assert.Equal(t, "19 Oct 2026", formatDate(&ts))
	assert.Equal(t, "", formatDate((*time.Time)(nil)))
	assert.Equal(t, "", formatDate(time.Time{}))
}

func TestTemplateEngine_Render(t *testing.T) {
	e := NewTemplateEngine()

	out, err := e.Render("t", `{{inr .}} / {{amountInWords .}}`, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, "₹100.00 / Rupees One Hundred Only", out)

	_, err = e.Render("bad", `{{inr .`, nil)
	assert.ErrorContains(t, err, "parse template bad")

	_, err = e.Render("exec", `{{.Missing.Field}}`, struct{}{})
	assert.ErrorContains(t, err, "execute template exec")
}
