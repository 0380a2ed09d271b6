package repository

import (
	"context"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/review/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool, page, limit int) ([]*model.Review, int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Review, error)
	ListByStatus(ctx context.Context, status string, page, limit int) ([]*model.Review, int, error)
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	RatingSummary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error)
}
