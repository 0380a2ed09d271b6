package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/service"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"
)

// AbandonExpiredHandler sweeps guest carts whose expiry passed and marks
// them abandoned so they stop showing up as active sessions.
type AbandonExpiredHandler struct {
	cartService service.ServiceInterface
}

func NewAbandonExpiredHandler(cartService service.ServiceInterface) *AbandonExpiredHandler {
	return &AbandonExpiredHandler{cartService: cartService}
}

func (h *AbandonExpiredHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.AbandonExpiredPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}

	// A zero cutoff means "everything expired as of now".
	before := payload.Before
	if before.IsZero() {
		before = time.Now()
	}

	started := time.Now()
	abandoned, err := h.cartService.AbandonExpired(ctx, before)
	if err != nil {
		logger.Error("Failed to abandon expired carts", err)
		return fmt.Errorf("abandon expired carts: %w", err)
	}

	logger.Info("Abandoned expired carts", map[string]interface{}{
		"abandoned": abandoned,
		"before":    before,
		"duration":  time.Since(started).String(),
	})

	return nil
}
