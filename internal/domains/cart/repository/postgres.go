package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domains/cart/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) CartRepository {
	return &postgresRepository{pool: pool}
}

const cartColumns = `id, user_id, session_id, status, coupon_code, expires_at, created_at, updated_at`

func scanCart(row pgx.Row) (*model.Cart, error) {
	var c model.Cart
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.SessionID,
		&c.Status,
		&c.CouponCode,
		&c.ExpiresAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) Create(ctx context.Context, cart *model.Cart) error {
	query := `
		INSERT INTO carts (id, user_id, session_id, status, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		cart.ID,
		cart.UserID,
		cart.SessionID,
		cart.Status,
		cart.ExpiresAt,
	).Scan(&cart.CreatedAt, &cart.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Cart, error) {
	query := fmt.Sprintf(`SELECT %s FROM carts WHERE id = $1`, cartColumns)

	cart, err := scanCart(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	if err := r.loadItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM carts WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`,
		cartColumns,
	)

	cart, err := scanCart(r.pool.QueryRow(ctx, query, userID, model.StatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find user cart: %w", err)
	}

	if err := r.loadItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepository) FindActiveBySession(ctx context.Context, sessionID string) (*model.Cart, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM carts WHERE session_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1`,
		cartColumns,
	)

	cart, err := scanCart(r.pool.QueryRow(ctx, query, sessionID, model.StatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find session cart: %w", err)
	}

	if err := r.loadItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepository) List(ctx context.Context, status string, page, limit int) ([]*model.Cart, int, error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = `WHERE status = $1`
		args = append(args, status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM carts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count carts: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM carts %s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		cartColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list carts: %w", err)
	}
	defer rows.Close()

	carts := []*model.Cart{}
	for rows.Next() {
		cart, err := scanCart(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan cart: %w", err)
		}
		carts = append(carts, cart)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read carts: %w", err)
	}

	for _, cart := range carts {
		if err := r.loadItems(ctx, cart); err != nil {
			return nil, 0, err
		}
	}
	return carts, total, nil
}

// UpsertItem adds quantity to an existing line or inserts a new one. The
// ON CONFLICT arm refreshes the captured price so a re-add reflects the
// current catalog price.
func (r *postgresRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) error {
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, product_name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET
			quantity = cart_items.quantity + EXCLUDED.quantity,
			product_name = EXCLUDED.product_name,
			unit_price = EXCLUDED.unit_price,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query, uuid.New(), cartID, productID, productName, unitPrice, quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepository) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3, updated_at = NOW() WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepository) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return r.touch(ctx, cartID)
}

func (r *postgresRepository) SetCoupon(ctx context.Context, cartID uuid.UUID, code *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE carts SET coupon_code = $2, updated_at = NOW() WHERE id = $1`,
		cartID, code,
	)
	if err != nil {
		return fmt.Errorf("failed to set cart coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartNotFound
	}
	return nil
}

// SetUser claims an anonymous cart for a user and drops its session binding.
func (r *postgresRepository) SetUser(ctx context.Context, cartID uuid.UUID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE carts SET user_id = $2, session_id = NULL, expires_at = NULL, updated_at = NOW() WHERE id = $1`,
		cartID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign cart user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartNotFound
	}
	return nil
}

func (r *postgresRepository) SetStatus(ctx context.Context, cartID uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE carts SET status = $2, updated_at = NOW() WHERE id = $1`,
		cartID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to set cart status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartNotFound
	}
	return nil
}

// SetStatusTx marks a cart inside an open transaction, used at checkout so
// the conversion commits together with the order.
func (r *postgresRepository) SetStatusTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, status string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE carts SET status = $2, updated_at = NOW() WHERE id = $1`,
		cartID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to set cart status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCartNotFound
	}
	return nil
}

// AbandonExpired flips guest carts whose expiry passed before the cutoff.
func (r *postgresRepository) AbandonExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE carts SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND expires_at IS NOT NULL AND expires_at < $3`,
		model.StatusAbandoned, model.StatusActive, before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to abandon expired carts: %w", err)
	}
	return tag.RowsAffected(), nil
}

const cartItemColumns = `id, cart_id, product_id, product_name, unit_price, quantity, created_at, updated_at`

func (r *postgresRepository) loadItems(ctx context.Context, cart *model.Cart) error {
	query := fmt.Sprintf(
		`SELECT %s FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC`,
		cartItemColumns,
	)

	rows, err := r.pool.Query(ctx, query, cart.ID)
	if err != nil {
		return fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read cart items: %w", err)
	}
	return nil
}

func (r *postgresRepository) touch(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}
