package notification

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	userID := uuid.New()

	t.Run("creates unread notification", func(t *testing.T) {
		n, err := NewNotification(userID, TypeOrder, " Order shipped ", "SF-20260101-00001 is on its way", "/orders/1")
		require.NoError(t, err)
		assert.Equal(t, "Order shipped", n.Title)
		assert.False(t, n.IsRead)
		assert.Nil(t, n.ReadAt)
	})

	t.Run("validates input", func(t *testing.T) {
		_, err := NewNotification(uuid.Nil, TypeOrder, "t", "m", "")
		assert.Error(t, err)
		_, err = NewNotification(userID, Type("sms"), "t", "m", "")
		assert.Error(t, err)
		_, err = NewNotification(userID, TypeSystem, "", "m", "")
		assert.Error(t, err)
		_, err = NewNotification(userID, TypeSystem, "t", " ", "")
		assert.Error(t, err)
	})
}

func TestNotification_MarkRead(t *testing.T) {
	n, err := NewNotification(uuid.New(), TypePromotion, "Sale", "20% off prawns", "")
	require.NoError(t, err)

	first := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	n.MarkRead(first)
	n.MarkRead(first.Add(time.Hour))

	assert.True(t, n.IsRead)
	assert.Equal(t, first, *n.ReadAt)
}

func TestEmailMessage_Validate(t *testing.T) {
	ok := EmailMessage{To: []string{"a@example.com"}, Subject: "Hi", Text: "Hello"}
	assert.NoError(t, ok.Validate())

	assert.Error(t, EmailMessage{Subject: "Hi", Text: "x"}.Validate())
	assert.Error(t, EmailMessage{To: []string{""}, Subject: "Hi", Text: "x"}.Validate())
	assert.Error(t, EmailMessage{To: []string{"a@example.com"}, Text: "x"}.Validate())
	assert.Error(t, EmailMessage{To: []string{"a@example.com"}, Subject: "Hi"}.Validate())
}

func TestFilter_Paging(t *testing.T) {
	assert.Equal(t, 20, Filter{}.Limit())
	assert.Equal(t, 0, Filter{Page: 1}.Offset())
	assert.Equal(t, 40, Filter{Page: 3}.Offset())
	assert.Equal(t, 100, Filter{PageSize: 1000}.Limit())
}
