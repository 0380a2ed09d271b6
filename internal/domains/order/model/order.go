package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses. The forward path is created, paid, processing, shipped,
// delivered. Canceled and refunded branch off per the transition table.
const (
	StatusCreated    = "created"
	StatusPaid       = "paid"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCanceled   = "canceled"
	StatusRefunded   = "refunded"
)

// transitions holds the allowed status moves.
var transitions = map[string][]string{
	StatusCreated:    {StatusPaid, StatusCanceled},
	StatusPaid:       {StatusProcessing, StatusCanceled, StatusRefunded},
	StatusProcessing: {StatusShipped, StatusCanceled, StatusRefunded},
	StatusShipped:    {StatusDelivered, StatusRefunded},
	StatusDelivered:  {StatusRefunded},
	StatusCanceled:   {},
	StatusRefunded:   {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Order is the immutable record of a checkout. Monetary fields are frozen
// at creation; later catalog price changes never touch them.
type Order struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	OrderNumber string     `json:"order_number" db:"order_number"`
	UserID      *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	Status      string     `json:"status" db:"status"`

	ContactName  string  `json:"contact_name" db:"contact_name"`
	ContactEmail string  `json:"contact_email" db:"contact_email"`
	ContactPhone *string `json:"contact_phone,omitempty" db:"contact_phone"`

	ShippingAddress string  `json:"shipping_address" db:"shipping_address"`
	ShippingCity    string  `json:"shipping_city" db:"shipping_city"`
	ShippingZip     *string `json:"shipping_zip,omitempty" db:"shipping_zip"`
	ShippingCountry string  `json:"shipping_country" db:"shipping_country"`

	Subtotal   decimal.Decimal `json:"subtotal" db:"subtotal"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	Tax        decimal.Decimal `json:"tax" db:"tax"`
	Shipping   decimal.Decimal `json:"shipping" db:"shipping"`
	Total      decimal.Decimal `json:"total" db:"total"`
	CouponCode *string         `json:"coupon_code,omitempty" db:"coupon_code"`

	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem captures a product's name and unit price at checkout time.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Discount    decimal.Decimal `json:"discount" db:"discount"`
}

type CheckoutRequest struct {
	ContactName  string  `json:"contact_name"`
	ContactEmail string  `json:"contact_email"`
	ContactPhone *string `json:"contact_phone,omitempty"`

	ShippingAddress string  `json:"shipping_address"`
	ShippingCity    string  `json:"shipping_city"`
	ShippingZip     *string `json:"shipping_zip,omitempty"`
	ShippingCountry string  `json:"shipping_country"`
}

func (r CheckoutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ContactName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.ContactEmail, validation.Required, is.Email),
		validation.Field(&r.ShippingAddress, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.ShippingCity, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.ShippingCountry, validation.Required, validation.Length(2, 60)),
	)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			StatusCreated, StatusPaid, StatusProcessing, StatusShipped,
			StatusDelivered, StatusCanceled, StatusRefunded,
		)),
	)
}

type ListOrdersFilter struct {
	UserID *uuid.UUID
	Status string
	Page   int
	Limit  int
}

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrCouponRejected    = errors.New("coupon was rejected at checkout")
)
