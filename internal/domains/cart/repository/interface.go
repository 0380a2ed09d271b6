package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domains/cart/model"
)

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	FindActiveBySession(ctx context.Context, sessionID string) (*model.Cart, error)
	List(ctx context.Context, status string, page, limit int) ([]*model.Cart, int, error)

	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) error
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error

	SetCoupon(ctx context.Context, cartID uuid.UUID, code *string) error
	SetUser(ctx context.Context, cartID uuid.UUID, userID uuid.UUID) error
	SetStatus(ctx context.Context, cartID uuid.UUID, status string) error
	SetStatusTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error

	AbandonExpired(ctx context.Context, before time.Time) (int64, error)
}
