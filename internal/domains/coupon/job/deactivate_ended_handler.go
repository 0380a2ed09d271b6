package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"storefront-backend/internal/domains/coupon/model"
	"storefront-backend/internal/domains/coupon/service"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"
)

// DeactivateEndedHandler flips coupons whose validity window has closed to
// inactive. The validator rejects them regardless, this keeps admin listings
// honest.
type DeactivateEndedHandler struct {
	couponService service.ServiceInterface
}

func NewDeactivateEndedHandler(couponService service.ServiceInterface) *DeactivateEndedHandler {
	return &DeactivateEndedHandler{couponService: couponService}
}

func (h *DeactivateEndedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.DeactivateEndedPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}

	before := payload.Before
	if before.IsZero() {
		before = time.Now()
	}

	deactivated, err := h.couponService.DeactivateEnded(ctx, before)
	if err != nil {
		logger.Error("Failed to deactivate ended coupons", err)
		return fmt.Errorf("deactivate ended coupons: %w", err)
	}

	logger.Info("Deactivated ended coupons", map[string]interface{}{
		"deactivated": deactivated,
		"before":      before,
	})

	return nil
}
