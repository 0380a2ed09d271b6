package main

import (
	"github.com/hibiken/asynq"

	cartJob "storefront-backend/internal/domains/cart/job"
	couponJob "storefront-backend/internal/domains/coupon/job"
	productJob "storefront-backend/internal/domains/product/job"
	"storefront-backend/internal/shared"
	"storefront-backend/pkg/container"
)

// HandlerRegistry holds all job handlers.
type HandlerRegistry struct {
	abandonExpiredCarts *cartJob.AbandonExpiredHandler
	deactivateCoupons   *couponJob.DeactivateEndedHandler
	processProductImage *productJob.ProcessImageHandler
	deleteProductImages *productJob.DeleteImagesHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		abandonExpiredCarts: cartJob.NewAbandonExpiredHandler(c.CartService),
		deactivateCoupons:   couponJob.NewDeactivateEndedHandler(c.CouponService),
		processProductImage: productJob.NewProcessImageHandler(c.Storage),
		deleteProductImages: productJob.NewDeleteImagesHandler(c.Storage),
	}
}

// RegisterHandlers maps task types onto their handlers.
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeAbandonExpiredCarts, h.abandonExpiredCarts.ProcessTask)
	mux.HandleFunc(shared.TypeDeactivateEndedCoupon, h.deactivateCoupons.ProcessTask)
	mux.HandleFunc(shared.TypeProcessProductImage, h.processProductImage.ProcessTask)
	mux.HandleFunc(shared.TypeDeleteProductImages, h.deleteProductImages.ProcessTask)
}
