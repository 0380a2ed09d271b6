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

// DeleteImagesHandler removes every stored object under a deleted product's
// image prefix.
type DeleteImagesHandler struct {
	storage *storage.MinIOStorage
}

func NewDeleteImagesHandler(store *storage.MinIOStorage) *DeleteImagesHandler {
	return &DeleteImagesHandler{storage: store}
}

func (h *DeleteImagesHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.DeleteImagesPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}

	prefix := fmt.Sprintf("products/%s/", payload.ProductID)
	if err := h.storage.DeletePrefix(ctx, prefix); err != nil {
		logger.Error("Failed to delete product images", err)
		return fmt.Errorf("delete product images %s: %w", payload.ProductID, err)
	}

	logger.Info("Deleted product images", map[string]interface{}{
		"product_id": payload.ProductID,
	})

	return nil
}
