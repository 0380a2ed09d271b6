package repository

import (
	"context"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/category/model"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, includeInactive bool) ([]*model.Category, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}
