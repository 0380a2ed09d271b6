package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domains/order/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresRepository{pool: pool}
}

const orderColumns = `id, order_number, user_id, status,
	contact_name, contact_email, contact_phone,
	shipping_address, shipping_city, shipping_zip, shipping_country,
	subtotal, discount, tax, shipping, total, coupon_code,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.Status,
		&o.ContactName,
		&o.ContactEmail,
		&o.ContactPhone,
		&o.ShippingAddress,
		&o.ShippingCity,
		&o.ShippingZip,
		&o.ShippingCountry,
		&o.Subtotal,
		&o.Discount,
		&o.Tax,
		&o.Shipping,
		&o.Total,
		&o.CouponCode,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, user_id, status,
			contact_name, contact_email, contact_phone,
			shipping_address, shipping_city, shipping_zip, shipping_country,
			subtotal, discount, tax, shipping, total, coupon_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.Status,
		order.ContactName,
		order.ContactEmail,
		order.ContactPhone,
		order.ShippingAddress,
		order.ShippingCity,
		order.ShippingZip,
		order.ShippingCountry,
		order.Subtotal,
		order.Discount,
		order.Tax,
		order.Shipping,
		order.Total,
		order.CouponCode,
	).Scan(&order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, discount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.Discount,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresRepository) FindByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE order_number = $1`, orderColumns)

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by number: %w", err)
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresRepository) List(ctx context.Context, filter *model.ListOrdersFilter) ([]*model.Order, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read orders: %w", err)
	}

	for _, order := range orders {
		if err := r.loadItems(ctx, order); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func (r *postgresRepository) loadItems(ctx context.Context, order *model.Order) error {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, product_name, unit_price, quantity, discount
		 FROM order_items WHERE order_id = $1 ORDER BY product_name ASC`,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	order.Items = []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.Discount,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read order items: %w", err)
	}
	return nil
}
