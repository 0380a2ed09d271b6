package repository

import (
	"context"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/user/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, page, limit int) ([]*model.User, int, error)
	Update(ctx context.Context, u *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
