package repository

import (
	"context"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/product/model"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Product, error)
	List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	UpdateImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
