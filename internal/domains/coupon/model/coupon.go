package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount types.
const (
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

// Coupon is a named discount rule. Codes are matched case-sensitively as
// stored. Nil bounds mean unbounded on that side.
type Coupon struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	Code           string           `json:"code" db:"code"`
	Type           string           `json:"type" db:"type"`
	Value          decimal.Decimal  `json:"value" db:"value"`
	MinSubtotal    *decimal.Decimal `json:"min_subtotal,omitempty" db:"min_subtotal"`
	MaxUses        *int             `json:"max_uses,omitempty" db:"max_uses"`
	MaxUsesPerUser *int             `json:"max_uses_per_user,omitempty" db:"max_uses_per_user"`
	StartsAt       *time.Time       `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt         *time.Time       `json:"ends_at,omitempty" db:"ends_at"`
	IsActive       bool             `json:"is_active" db:"is_active"`
	ProductIDs     []uuid.UUID      `json:"product_ids" db:"product_ids"`
	CategoryIDs    []uuid.UUID      `json:"category_ids" db:"category_ids"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// IsRestricted reports whether the coupon limits eligibility to specific
// products or categories.
func (c *Coupon) IsRestricted() bool {
	return len(c.ProductIDs) > 0 || len(c.CategoryIDs) > 0
}

// Terms is the normalized coupon descriptor handed to the order
// calculator once validation passes.
type Terms struct {
	CouponID    uuid.UUID       `json:"coupon_id"`
	Code        string          `json:"code"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
	ProductIDs  []uuid.UUID     `json:"product_ids"`
	CategoryIDs []uuid.UUID     `json:"category_ids"`
}

// Terms converts a validated coupon into its normalized form.
func (c *Coupon) Terms() *Terms {
	return &Terms{
		CouponID:    c.ID,
		Code:        c.Code,
		Type:        c.Type,
		Value:       c.Value,
		ProductIDs:  c.ProductIDs,
		CategoryIDs: c.CategoryIDs,
	}
}

// CartLine is the slice of cart state the validator needs. CategoryID is
// the product's category at validation time.
type CartLine struct {
	ProductID  uuid.UUID
	CategoryID *uuid.UUID
	UnitPrice  decimal.Decimal
	Quantity   int
}

// ValidationResult reports a verdict with a display-ready reason. Reason is
// empty when Valid is true.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Terms  *Terms `json:"terms,omitempty"`
}

// Redemption records one successful application of a coupon to an order,
// including the discount granted. Caps are enforced by counting these rows.
type Redemption struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	CouponID  uuid.UUID       `json:"coupon_id" db:"coupon_id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type CreateCouponRequest struct {
	Code           string      `json:"code"`
	Type           string      `json:"type"`
	Value          float64     `json:"value"`
	MinSubtotal    *float64    `json:"min_subtotal,omitempty"`
	MaxUses        *int        `json:"max_uses,omitempty"`
	MaxUsesPerUser *int        `json:"max_uses_per_user,omitempty"`
	StartsAt       *time.Time  `json:"starts_at,omitempty"`
	EndsAt         *time.Time  `json:"ends_at,omitempty"`
	IsActive       *bool       `json:"is_active,omitempty"`
	ProductIDs     []uuid.UUID `json:"product_ids,omitempty"`
	CategoryIDs    []uuid.UUID `json:"category_ids,omitempty"`
}

func (r CreateCouponRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Type, validation.Required, validation.In(TypePercent, TypeFixed)),
		validation.Field(&r.Value, validation.Required, validation.Min(0.01)),
	)
	if err != nil {
		return err
	}
	if r.Type == TypePercent && r.Value > 100 {
		return validation.NewError("validation_percent_range", "percent value cannot exceed 100")
	}
	if r.StartsAt != nil && r.EndsAt != nil && r.EndsAt.Before(*r.StartsAt) {
		return validation.NewError("validation_window", "ends_at must be after starts_at")
	}
	return nil
}

type UpdateCouponRequest struct {
	Type           *string     `json:"type,omitempty"`
	Value          *float64    `json:"value,omitempty"`
	MinSubtotal    *float64    `json:"min_subtotal,omitempty"`
	MaxUses        *int        `json:"max_uses,omitempty"`
	MaxUsesPerUser *int        `json:"max_uses_per_user,omitempty"`
	StartsAt       *time.Time  `json:"starts_at,omitempty"`
	EndsAt         *time.Time  `json:"ends_at,omitempty"`
	IsActive       *bool       `json:"is_active,omitempty"`
	ProductIDs     []uuid.UUID `json:"product_ids,omitempty"`
	CategoryIDs    []uuid.UUID `json:"category_ids,omitempty"`
}

func (r UpdateCouponRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.In(TypePercent, TypeFixed)),
		validation.Field(&r.Value, validation.Min(0.01)),
	)
	if err != nil {
		return err
	}
	if r.Type != nil && *r.Type == TypePercent && r.Value != nil && *r.Value > 100 {
		return validation.NewError("validation_percent_range", "percent value cannot exceed 100")
	}
	return nil
}

// DeactivateEndedPayload is the asynq task payload for the coupon sweeper.
type DeactivateEndedPayload struct {
	Before time.Time `json:"before"`
}
