package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-backend/internal/domains/coupon/model"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	// FindByCodeForUpdate locks the coupon row for the duration of the
	// surrounding transaction, serializing concurrent checkouts on the
	// same code.
	FindByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error)
	List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)
	Update(ctx context.Context, coupon *model.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error

	CountRedemptions(ctx context.Context, couponID uuid.UUID) (int, error)
	CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int, error)
	CountRedemptionsTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (int, error)
	CountUserRedemptionsTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) (int, error)
	CreateRedemptionTx(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error
	ListRedemptions(ctx context.Context, couponID uuid.UUID, page, limit int) ([]*model.Redemption, int, error)

	DeactivateEnded(ctx context.Context, before time.Time) (int64, error)
}
