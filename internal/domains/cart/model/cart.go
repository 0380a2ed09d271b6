package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/shared/utils"
)

// Cart lifecycle. An active cart converts to an order at checkout;
// abandoned carts are kept for reporting only.
const (
	StatusActive    = "active"
	StatusConverted = "converted"
	StatusAbandoned = "abandoned"
)

// Guest carts expire after this long without activity.
const AnonymousCartTTL = 30 * 24 * time.Hour

type Cart struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	SessionID  *string    `json:"session_id,omitempty" db:"session_id"`
	Status     string     `json:"status" db:"status"`
	CouponCode *string    `json:"coupon_code,omitempty" db:"coupon_code"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	Items      []CartItem `json:"items"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// CartItem references a product with a price captured when the line was
// last written. The captured price is display-only; orders re-read the
// live price at checkout.
type CartItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CartID      uuid.UUID       `json:"cart_id" db:"cart_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ItemCount is the sum of line quantities. Always derived, never stored.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// TotalAmount sums unit price times quantity over all lines using each
// line's captured price.
func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (r AddItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, utils.RequiredUUID),
		validation.Field(&r.Quantity, validation.Min(1), validation.Max(999)),
	)
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (r UpdateQuantityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Min(0), validation.Max(999)),
	)
}

// CreateCartItemsRequest seeds a cart with several lines at once. Duplicate
// product ids are coalesced by summing quantities before writing.
type CreateCartItemsRequest struct {
	Items []AddItemRequest `json:"items"`
}

func (r CreateCartItemsRequest) Validate() error {
	if len(r.Items) == 0 {
		return validation.NewError("validation_required", "items cannot be empty")
	}
	for _, item := range r.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Coalesce merges duplicate product references by summing quantities,
// preserving first-seen order. An omitted quantity counts as one,
// matching the single-item endpoint; written lines are always >= 1.
func (r CreateCartItemsRequest) Coalesce() []AddItemRequest {
	index := make(map[uuid.UUID]int, len(r.Items))
	merged := make([]AddItemRequest, 0, len(r.Items))
	for _, item := range r.Items {
		if item.Quantity == 0 {
			item.Quantity = 1
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

type ApplyCouponRequest struct {
	Code string `json:"code"`
}

func (r ApplyCouponRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 50)),
	)
}

// Migration strategies for an anonymous cart at login.
const (
	MigrateMerge   = "merge"
	MigrateDiscard = "discard"
)

// AbandonExpiredPayload is the asynq task payload for the cart sweeper.
type AbandonExpiredPayload struct {
	Before time.Time `json:"before"`
}

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartNotActive    = errors.New("cart is not active")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrInvalidStrategy  = errors.New("unknown cart migration strategy")
)
