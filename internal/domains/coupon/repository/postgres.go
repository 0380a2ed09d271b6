package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"storefront-backend/internal/domains/coupon/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) CouponRepository {
	return &postgresRepository{pool: pool}
}

const couponColumns = `id, code, type, value, min_subtotal, max_uses, max_uses_per_user,
	starts_at, ends_at, is_active, product_ids, category_ids, created_at, updated_at`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Type,
		&c.Value,
		&c.MinSubtotal,
		&c.MaxUses,
		&c.MaxUsesPerUser,
		&c.StartsAt,
		&c.EndsAt,
		&c.IsActive,
		pq.Array(&c.ProductIDs),
		pq.Array(&c.CategoryIDs),
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, type, value, min_subtotal, max_uses, max_uses_per_user,
			starts_at, ends_at, is_active, product_ids, category_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Type,
		coupon.Value,
		coupon.MinSubtotal,
		coupon.MaxUses,
		coupon.MaxUsesPerUser,
		coupon.StartsAt,
		coupon.EndsAt,
		coupon.IsActive,
		pq.Array(coupon.ProductIDs),
		pq.Array(coupon.CategoryIDs),
	).Scan(&coupon.CreatedAt, &coupon.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE id = $1`, couponColumns)

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to find coupon: %w", err)
	}
	return coupon, nil
}

// FindByCode matches the code exactly as stored.
func (r *postgresRepository) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE code = $1`, couponColumns)

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to find coupon by code: %w", err)
	}
	return coupon, nil
}

func (r *postgresRepository) FindByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE code = $1 FOR UPDATE`, couponColumns)

	coupon, err := scanCoupon(tx.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to lock coupon: %w", err)
	}
	return coupon, nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM coupons ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		couponColumns,
	)

	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []*model.Coupon{}
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read coupons: %w", err)
	}
	return coupons, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	query := `
		UPDATE coupons
		SET type = $2, value = $3, min_subtotal = $4, max_uses = $5, max_uses_per_user = $6,
			starts_at = $7, ends_at = $8, is_active = $9, product_ids = $10, category_ids = $11,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		coupon.ID,
		coupon.Type,
		coupon.Value,
		coupon.MinSubtotal,
		coupon.MaxUses,
		coupon.MaxUsesPerUser,
		coupon.StartsAt,
		coupon.EndsAt,
		coupon.IsActive,
		pq.Array(coupon.ProductIDs),
		pq.Array(coupon.CategoryIDs),
	).Scan(&coupon.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrCouponNotFound
		}
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}
	return nil
}

// Redemption counts are always derived from the records; no mutable
// counter exists to race on.

func (r *postgresRepository) CountRedemptions(ctx context.Context, couponID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`, couponID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count redemptions: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user redemptions: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CountRedemptionsTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (int, error) {
	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`, couponID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count redemptions: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CountUserRedemptionsTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) (int, error) {
	var count int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1 AND user_id = $2`,
		couponID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user redemptions: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) CreateRedemptionTx(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error {
	query := `
		INSERT INTO coupon_redemptions (id, coupon_id, user_id, order_id, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := tx.QueryRow(ctx, query,
		redemption.ID,
		redemption.CouponID,
		redemption.UserID,
		redemption.OrderID,
		redemption.Amount,
	).Scan(&redemption.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record redemption: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListRedemptions(ctx context.Context, couponID uuid.UUID, page, limit int) ([]*model.Redemption, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_redemptions WHERE coupon_id = $1`, couponID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, coupon_id, user_id, order_id, amount, created_at
		 FROM coupon_redemptions WHERE coupon_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		couponID, limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list redemptions: %w", err)
	}
	defer rows.Close()

	redemptions := []*model.Redemption{}
	for rows.Next() {
		var red model.Redemption
		if err := rows.Scan(&red.ID, &red.CouponID, &red.UserID, &red.OrderID, &red.Amount, &red.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, &red)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read redemptions: %w", err)
	}
	return redemptions, total, nil
}

// DeactivateEnded flips the active flag on coupons whose window closed.
func (r *postgresRepository) DeactivateEnded(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE coupons SET is_active = false, updated_at = NOW()
		 WHERE is_active = true AND ends_at IS NOT NULL AND ends_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate ended coupons: %w", err)
	}
	return tag.RowsAffected(), nil
}
