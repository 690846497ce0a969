package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogapp "github.com/seafresh/backend/internal/application/catalog"
	"github.com/seafresh/backend/internal/domain/shared"
	"github.com/seafresh/backend/internal/infrastructure/storage"
	"github.com/seafresh/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploadService struct {
	mock.Mock
}

func (m *mockUploadService) MaxImageBytes() int64 {
	return int64(m.Called().Int(0))
}

func (m *mockUploadService) UploadImage(ctx context.Context, data []byte) (*catalogapp.UploadResponse, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.UploadResponse), args.Error(1)
}

func (m *mockUploadService) PresignUpload(ctx context.Context, req catalogapp.PresignRequest) (*catalogapp.PresignResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.PresignResponse), args.Error(1)
}

func (m *mockUploadService) DeleteImage(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "pomfret.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func uploadRoutes(svc *mockUploadService, local LocalObjects) http.Handler {
	h := NewUploadHandler(svc, local)
	router := newRouter(adminSession())
	router.POST("/admin/uploads", h.Upload)
	router.POST("/admin/uploads/presign", h.Presign)
	router.DELETE("/admin/uploads/*key", h.Delete)
	router.GET("/uploads/*key", h.ServeLocal)
	router.PUT("/uploads/*key", h.PutLocal)
	return router
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadHandler_Upload(t *testing.T) {
	t.Run("stores the image", func(t *testing.T) {
		svc := new(mockUploadService)
		svc.On("MaxImageBytes").Return(5 << 20)
		svc.On("UploadImage", mock.Anything, pngHeader).Return(&catalogapp.UploadResponse{
			Key: "products/2026/10/a.png", URL: "https://cdn.example/products/2026/10/a.png", ContentType: "image/png", Size: int64(len(pngHeader)),
		}, nil)

		w := httptest.NewRecorder()
		uploadRoutes(svc, nil).ServeHTTP(w, multipartRequest(t, "file", pngHeader))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "products/2026/10/a.png", dataMap(t, w)["key"])
	})

	t.Run("missing file field", func(t *testing.T) {
		svc := new(mockUploadService)
		w := httptest.NewRecorder()
		uploadRoutes(svc, nil).ServeHTTP(w, multipartRequest(t, "image", pngHeader))

		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("file over the limit", func(t *testing.T) {
		svc := new(mockUploadService)
		svc.On("MaxImageBytes").Return(8)

		w := httptest.NewRecorder()
		uploadRoutes(svc, nil).ServeHTTP(w, multipartRequest(t, "file", pngHeader))

		requireErrorCode(t, w, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge)
		svc.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything)
	})

	t.Run("unsupported type", func(t *testing.T) {
		svc := new(mockUploadService)
		svc.On("MaxImageBytes").Return(5 << 20)
		svc.On("UploadImage", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("UNSUPPORTED_FILE_TYPE", "Only JPEG, PNG and WebP images are allowed"))

		w := httptest.NewRecorder()
		uploadRoutes(svc, nil).ServeHTTP(w, multipartRequest(t, "file", []byte("%PDF-1.7")))

		requireErrorCode(t, w, http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedFile)
	})
}

func TestUploadHandler_PresignAndDelete(t *testing.T) {
	svc := new(mockUploadService)
	svc.On("PresignUpload", mock.Anything, catalogapp.PresignRequest{ContentType: "image/webp"}).
		Return(&catalogapp.PresignResponse{Key: "products/2026/10/b.webp", UploadURL: "https://bucket.example/put"}, nil)
	svc.On("DeleteImage", mock.Anything, "products/2026/10/b.webp").Return(nil)
	router := uploadRoutes(svc, nil)

	w := doJSON(router, http.MethodPost, "/admin/uploads/presign", map[string]string{"content_type": "image/webp"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, "/admin/uploads/presign", map[string]string{"content_type": "image/gif"})
	requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = serve(router, http.MethodDelete, "/admin/uploads/products/2026/10/b.webp")
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestUploadHandler_LocalBucket(t *testing.T) {
	svc := new(mockUploadService)
	svc.On("MaxImageBytes").Return(5 << 20)
	local := storage.NewMemoryObjectStorage("http://localhost:8080/uploads")
	router := uploadRoutes(svc, local)

	req := httptest.NewRequest(http.MethodPut, "/uploads/products/2026/10/c.png?content_type=image/png", bytes.NewReader(pngHeader))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(router, http.MethodGet, "/uploads/products/2026/10/c.png")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngHeader, w.Body.Bytes())

	w = serve(router, http.MethodGet, "/uploads/products/missing.png")
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("no local bucket", func(t *testing.T) {
		w := serve(uploadRoutes(svc, nil), http.MethodGet, "/uploads/products/2026/10/c.png")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
