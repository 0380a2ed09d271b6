package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/internal/shared/response"
	"storefront-backend/pkg/logger"
)

// 10MB per file.
const maxUploadSize = 10 << 20

// UploadedFile is one stored file in the API response.
type UploadedFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type UploadHandler struct {
	storage *storage.MinIOStorage
}

func NewUploadHandler(storage *storage.MinIOStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

// Upload stores every part of the multipart field "files" and returns
// their ids and public URLs. One bad file fails the whole request so the
// client never holds a partial id list.
func (h *UploadHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "multipart form is required")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		response.BadRequest(c, "no files provided")
		return
	}

	uploaded := make([]UploadedFile, 0, len(files))
	for _, fileHeader := range files {
		entry, err := h.storeFile(c, fileHeader)
		if err != nil {
			// Best effort cleanup of what already landed.
			for _, u := range uploaded {
				if delErr := h.storage.DeletePrefix(c.Request.Context(), "uploads/"+u.ID+"/"); delErr != nil {
					logger.Warn("failed to clean up partial upload", map[string]interface{}{
						"file_id": u.ID,
						"error":   delErr.Error(),
					})
				}
			}
			response.InternalServerError(c, err.Error())
			return
		}
		uploaded = append(uploaded, *entry)
	}

	response.Success(c, http.StatusOK, uploaded)
}

func (h *UploadHandler) storeFile(c *gin.Context, fileHeader *multipart.FileHeader) (*UploadedFile, error) {
	if fileHeader.Size > maxUploadSize {
		return nil, fmt.Errorf("file %s exceeds the %dMB limit", fileHeader.Filename, maxUploadSize>>20)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", fileHeader.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", fileHeader.Filename, err)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New().String()
	name := path.Base(fileHeader.Filename)
	key := fmt.Sprintf("uploads/%s/%s", id, name)

	url, err := h.storage.Upload(c.Request.Context(), key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("cannot store %s: %w", name, err)
	}

	return &UploadedFile{ID: id, Name: name, URL: url}, nil
}

// Delete removes files by the comma-separated file_ids query parameter.
func (h *UploadHandler) Delete(c *gin.Context) {
	raw := c.Query("file_ids")
	if raw == "" {
		response.BadRequest(c, "file_ids is required")
		return
	}

	ids := strings.Split(raw, ",")
	deleted := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, err := uuid.Parse(id); err != nil {
			response.BadRequest(c, fmt.Sprintf("invalid file id: %s", id))
			return
		}
		if err := h.storage.DeletePrefix(c.Request.Context(), "uploads/"+id+"/"); err != nil {
			response.InternalServerError(c, err.Error())
			return
		}
		deleted = append(deleted, id)
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}
