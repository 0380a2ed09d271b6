package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-backend/internal/domains/order/model"
)

type OrderRepository interface {
	// CreateTx writes the order and its items inside the checkout
	// transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	List(ctx context.Context, filter *model.ListOrdersFilter) ([]*model.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
