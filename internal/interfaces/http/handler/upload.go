package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/seafresh/backend/internal/application/catalog"
	"github.com/seafresh/backend/internal/infrastructure/storage"
	"github.com/seafresh/backend/internal/interfaces/http/dto"
)

// UploadService stores product images
type UploadService interface {
	MaxImageBytes() int64
	UploadImage(ctx context.Context, data []byte) (*catalogapp.UploadResponse, error)
	PresignUpload(ctx context.Context, req catalogapp.PresignRequest) (*catalogapp.PresignResponse, error)
	DeleteImage(ctx context.Context, key string) error
}

// LocalObjects is the in-memory bucket served under /uploads when no S3 bucket is configured
type LocalObjects interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	Get(storageKey string) (storage.StoredObject, bool)
}

// UploadHandler handles product image uploads
type UploadHandler struct {
	BaseHandler
	uploads UploadService
	local   LocalObjects
}

// NewUploadHandler creates a new UploadHandler. local may be nil.
func NewUploadHandler(uploads UploadService, local LocalObjects) *UploadHandler {
	return &UploadHandler{uploads: uploads, local: local}
}

// Upload godoc
// @ID           uploadProductImage
// @Summary      Upload a product image
// @Description  JPEG, PNG or WebP up to 5 MB, sniffed from the file contents
// @Tags         admin-uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "Image"
// @Success      201 {object} APIResponse[catalog.UploadResponse]
// @Failure      413 {object} ErrorResponse
// @Failure      415 {object} ErrorResponse
// @Router       /admin/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			h.HandleError(c, err)
			return
		}
		h.ValidationError(c, []dto.ValidationDetail{{Field: "file", Message: "An image file is required"}})
		return
	}
	defer file.Close()

	limit := h.uploads.MaxImageBytes()
	if header.Size > limit {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "Image is too large")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.uploads.UploadImage(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Presign godoc
// @ID           presignProductImage
// @Summary      Presigned URL for a direct browser upload
// @Tags         admin-uploads
// @Accept       json
// @Produce      json
// @Param        request body catalog.PresignRequest true "Content type"
// @Success      200 {object} APIResponse[catalog.PresignResponse]
// @Router       /admin/uploads/presign [post]
func (h *UploadHandler) Presign(c *gin.Context) {
	var req catalogapp.PresignRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.uploads.PresignUpload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @ID           deleteProductImage
// @Summary      Delete an uploaded image
// @Tags         admin-uploads
// @Param        key path string true "Object key, e.g. products/2026/01/<uuid>.jpg"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /admin/uploads/{key} [delete]
func (h *UploadHandler) Delete(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if err := h.uploads.DeleteImage(c.Request.Context(), key); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ServeLocal serves an object from the in-memory bucket
func (h *UploadHandler) ServeLocal(c *gin.Context) {
	if h.local == nil {
		h.NotFound(c, "Not found")
		return
	}
	obj, ok := h.local.Get(strings.TrimPrefix(c.Param("key"), "/"))
	if !ok {
		h.NotFound(c, "Image not found")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}

// PutLocal accepts the PUT a presigned URL points at in the in-memory bucket
func (h *UploadHandler) PutLocal(c *gin.Context) {
	if h.local == nil {
		h.NotFound(c, "Not found")
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		h.BadRequest(c, "Invalid object key")
		return
	}
	limit := h.uploads.MaxImageBytes()
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if int64(len(data)) > limit {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "Image is too large")
		return
	}
	contentType := c.Query("content_type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if err := h.local.Upload(c.Request.Context(), key, data, contentType); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
