package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage("http://localhost:8080/uploads/")

	data := []byte("png")
	require.NoError(t, s.Upload(ctx, "products/a.png", data, "image/png"))
	data[0] = 'x'

	obj, ok := s.Get("products/a.png")
	require.True(t, ok)
	assert.Equal(t, "png", string(obj.Data))
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, "http://localhost:8080/uploads/products/a.png", s.PublicURL("products/a.png"))

	exists, err := s.ObjectExists(ctx, "products/a.png")
	require.NoError(t, err)
	assert.True(t, exists)

	u, _, err := s.GenerateUploadURL(ctx, "products/b.png", "image/png", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "products/b.png?content_type=image%2Fpng")

	require.NoError(t, s.DeleteObject(ctx, "products/a.png"))
	require.NoError(t, s.DeleteObject(ctx, "products/a.png"))
	exists, _ = s.ObjectExists(ctx, "products/a.png")
	assert.False(t, exists)

	assert.Error(t, s.Upload(ctx, "", nil, ""))
}
