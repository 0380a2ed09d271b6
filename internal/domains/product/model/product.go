package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. Price is the live price; carts snapshot it per
// line and orders freeze it at checkout.
type Product struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Slug         string          `json:"slug" db:"slug"`
	Description  *string         `json:"description,omitempty" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty" db:"category_id"`
	ImageURL     *string         `json:"image_url,omitempty" db:"image_url"`
	ThumbnailURL *string         `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	IsActive     bool            `json:"is_active" db:"is_active"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateProductRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description *string    `json:"description,omitempty"`
	Price       float64    `json:"price" binding:"required,gt=0"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Required, validation.Min(0.01)),
	)
}

type UpdateProductRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

func (r UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Price, validation.Min(0.01)),
	)
}

// ListProductsFilter carries catalog listing parameters.
type ListProductsFilter struct {
	CategoryID      *uuid.UUID
	Search          string
	IncludeInactive bool
	Page            int
	Limit           int
}

// ProcessImagePayload is the asynq task payload for image variant generation.
type ProcessImagePayload struct {
	ProductID uuid.UUID `json:"product_id"`
	ObjectKey string    `json:"object_key"`
}

// DeleteImagesPayload is the asynq task payload for removing a product's images.
type DeleteImagesPayload struct {
	ProductID uuid.UUID `json:"product_id"`
}

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSlug   = errors.New("product slug already exists")
	ErrProductInactive = errors.New("product is not available")
	ErrInvalidImage    = errors.New("invalid image")
)
