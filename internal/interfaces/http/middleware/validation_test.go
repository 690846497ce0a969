package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAddress struct {
	PostalCode string `json:"postal_code" binding:"required,len=6"`
}

type testCheckout struct {
	Email   string        `json:"email" binding:"required,email"`
	Items   []int         `json:"items" binding:"required,min=1"`
	Coupon  string        `json:"coupon_code" binding:"omitempty,couponcode"`
	Method  string        `json:"payment_method" binding:"oneof=razorpay cod"`
	Address testAddress   `json:"shipping_address"`
	Extra   []testAddress `json:"extra" binding:"dive"`
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	t.Run("names fields by json tag", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&testCheckout{
			Email:  "not-an-email",
			Coupon: "no spaces!",
			Method: "upi",
		})
		require.Error(t, err)

		details := ValidationDetails(err)
		byField := map[string]string{}
		for _, d := range details {
			byField[d.Field] = d.Message
		}
		assert.Equal(t, "Invalid email format", byField["email"])
		assert.Equal(t, "This field is required", byField["items"])
		assert.Equal(t, "Must be 3-32 characters of letters, digits, _ or -", byField["coupon_code"])
		assert.Equal(t, "Must be one of: razorpay cod", byField["payment_method"])
		assert.Equal(t, "This field is required", byField["shipping_address.postal_code"])
	})

	t.Run("valid input", func(t *testing.T) {
		err := binding.Validator.ValidateStruct(&testCheckout{
			Email:   "asha@example.com",
			Items:   []int{1},
			Coupon:  "FRESH10",
			Method:  "cod",
			Address: testAddress{PostalCode: "682001"},
		})
		assert.NoError(t, err)
	})

	t.Run("non validator error", func(t *testing.T) {
		assert.Nil(t, ValidationDetails(assert.AnError))
	})
}

func TestValidationMessage(t *testing.T) {
	type input struct {
		Name  string   `binding:"min=5"`
		Tags  []string `binding:"max=1"`
		Count int      `binding:"gte=10"`
		ID    string   `binding:"uuid"`
		Link  string   `binding:"url"`
	}

	v := validator.New()
	v.SetTagName("binding")
	err := v.Struct(input{Name: "ab", Tags: []string{"a", "b"}, Count: 1, ID: "x", Link: "x"})
	require.Error(t, err)

	got := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		got[e.Field()] = validationMessage(e)
	}
	assert.Equal(t, "Must be at least 5 characters", got["Name"])
	assert.Equal(t, "Must contain at most 1 items", got["Tags"])
	assert.Equal(t, "Must be greater than or equal to 10", got["Count"])
	assert.Equal(t, "Invalid UUID format", got["ID"])
	assert.Equal(t, "Invalid URL format", got["Link"])
}
