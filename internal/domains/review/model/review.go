package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"storefront-backend/internal/shared/utils"
)

const (
	MinRating = 1
	MaxRating = 5

	MinContentLength = 10
	MaxContentLength = 2000

	// Customers may edit their review within this window.
	EditWindowDays = 7
)

// Moderation states. New reviews start pending and are hidden from the
// public listing until approved.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Rating    int       `json:"rating" db:"rating"`
	Title     *string   `json:"title,omitempty" db:"title"`
	Content   string    `json:"content" db:"content"`
	Status    string    `json:"status" db:"status"`
	AdminNote *string   `json:"admin_note,omitempty" db:"admin_note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CanBeEdited reports whether the edit window is still open.
func (r *Review) CanBeEdited() bool {
	return time.Since(r.CreatedAt) < EditWindowDays*24*time.Hour
}

// RatingSummary aggregates approved reviews for a product.
type RatingSummary struct {
	ProductID uuid.UUID `json:"product_id"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
}

type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Rating    int       `json:"rating"`
	Title     *string   `json:"title,omitempty"`
	Content   string    `json:"content"`
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, utils.RequiredUUID),
		validation.Field(&r.Rating, validation.Required, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Content, validation.Required, validation.Length(MinContentLength, MaxContentLength)),
	)
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Content, validation.Length(MinContentLength, MaxContentLength)),
	)
}

type ModerateReviewRequest struct {
	Status    string  `json:"status"`
	AdminNote *string `json:"admin_note,omitempty"`
}

func (r ModerateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(StatusApproved, StatusRejected)),
	)
}

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrCannotEdit      = errors.New("review can no longer be edited")
	ErrNotReviewOwner  = errors.New("review belongs to another user")
)
