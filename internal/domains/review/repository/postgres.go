package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/domains/review/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) ReviewRepository {
	return &postgresRepository{pool: pool}
}

const reviewColumns = `id, user_id, product_id, rating, title, content, status, admin_note, created_at, updated_at`

func scanReview(row pgx.Row) (*model.Review, error) {
	var rv model.Review
	err := row.Scan(
		&rv.ID,
		&rv.UserID,
		&rv.ProductID,
		&rv.Rating,
		&rv.Title,
		&rv.Content,
		&rv.Status,
		&rv.AdminNote,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *postgresRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, product_id, rating, title, content, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		review.ID,
		review.UserID,
		review.ProductID,
		review.Rating,
		review.Title,
		review.Content,
		review.Status,
	).Scan(&review.CreatedAt, &review.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		// UNIQUE(user_id, product_id)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return review, nil
}

func (r *postgresRepository) ListByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool, page, limit int) ([]*model.Review, int, error) {
	where := `WHERE product_id = $1`
	args := []interface{}{productID}
	if approvedOnly {
		where += ` AND status = $2`
		args = append(args, model.StatusApproved)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM reviews ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM reviews %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		reviewColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`, reviewColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

func (r *postgresRepository) ListByStatus(ctx context.Context, status string, page, limit int) ([]*model.Review, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE status = $1`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM reviews WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		reviewColumns,
	)

	rows, err := r.pool.Query(ctx, query, status, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, review *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, title = $3, content = $4, status = $5, admin_note = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		review.ID,
		review.Rating,
		review.Title,
		review.Content,
		review.Status,
		review.AdminNote,
	).Scan(&review.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrReviewNotFound
		}
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

func (r *postgresRepository) RatingSummary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = $1 AND status = $2
	`

	summary := &model.RatingSummary{ProductID: productID}
	err := r.pool.QueryRow(ctx, query, productID, model.StatusApproved).Scan(&summary.Average, &summary.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating summary: %w", err)
	}
	return summary, nil
}

func collectReviews(rows pgx.Rows) ([]*model.Review, error) {
	reviews := []*model.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}
	return reviews, nil
}
