package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"
)

// ProcessImageHandler generates the large rendition off the request path.
// The upload endpoint stores the original plus the medium and thumbnail
// variants synchronously so the product is immediately presentable.
type ProcessImageHandler struct {
	storage   *storage.MinIOStorage
	processor *storage.ImageProcessor
}

func NewProcessImageHandler(store *storage.MinIOStorage) *ProcessImageHandler {
	return &ProcessImageHandler{
		storage:   store,
		processor: storage.NewImageProcessor(),
	}
}

func (h *ProcessImageHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.ProcessImagePayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}

	original, err := h.storage.Download(ctx, payload.ObjectKey)
	if err != nil {
		logger.Error("Failed to download original image", err)
		return fmt.Errorf("download original %s: %w", payload.ObjectKey, err)
	}

	variants, err := h.processor.ProcessImage(original)
	if err != nil {
		return fmt.Errorf("process image %s: %w", payload.ObjectKey, err)
	}

	key := fmt.Sprintf("products/%s/large.jpg", payload.ProductID)
	if _, err := h.storage.Upload(ctx, key, variants["large"], "image/jpeg"); err != nil {
		logger.Error("Failed to upload large variant", err)
		return fmt.Errorf("upload large variant: %w", err)
	}

	logger.Info("Generated large image variant", map[string]interface{}{
		"product_id": payload.ProductID,
	})

	return nil
}
