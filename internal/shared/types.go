package shared

// Asynq task types
const (
	TypeAbandonExpiredCarts   = "cart:abandon_expired"
	TypeDeactivateEndedCoupon = "coupon:deactivate_ended"
	TypeProcessProductImage   = "product:process_image"
	TypeDeleteProductImages   = "product:delete_images"
)

// Asynq queues
const (
	QueueDefault = "default"
	QueueCart    = "cart"
	QueueCoupon  = "coupon"
	QueueProduct = "product"
)
