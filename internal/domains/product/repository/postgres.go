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

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/pkg/cache"
)

const productCacheTTL = 5 * time.Minute

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) ProductRepository {
	return &postgresRepository{pool: pool, cache: cache}
}

const productColumns = `id, name, slug, description, price, category_id, image_url, thumbnail_url, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.CategoryID,
		&p.ImageURL,
		&p.ThumbnailURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func productCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:id:%s", id)
}

func (r *postgresRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, price, category_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.CategoryID,
		product.IsActive,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateSlug
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var cached model.Product
	if found, err := r.cache.Get(ctx, productCacheKey(id), &cached); err == nil && found {
		return &cached, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	// Cache failures are non-critical
	_ = r.cache.Set(ctx, productCacheKey(id), product, productCacheTTL)

	return product, nil
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	product, err := scanProduct(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}

	return product, nil
}

func (r *postgresRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *postgresRepository) List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argc := 0

	if !filter.IncludeInactive {
		where += ` AND is_active = true`
	}
	if filter.CategoryID != nil {
		argc++
		where += fmt.Sprintf(" AND category_id = $%d", argc)
		args = append(args, *filter.CategoryID)
	}
	if filter.Search != "" {
		argc++
		where += fmt.Sprintf(" AND name ILIKE $%d", argc)
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := `SELECT ` + productColumns + ` FROM products` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argc+1, argc+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, total, rows.Err()
}

func (r *postgresRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price = $5, category_id = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.Price,
		product.CategoryID,
		product.IsActive,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProductNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateSlug
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	_ = r.cache.Delete(ctx, productCacheKey(product.ID))

	return nil
}

func (r *postgresRepository) UpdateImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL *string) error {
	query := `
		UPDATE products
		SET image_url = $2, thumbnail_url = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, imageURL, thumbnailURL)
	if err != nil {
		return fmt.Errorf("failed to update product images: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	_ = r.cache.Delete(ctx, productCacheKey(id))

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	_ = r.cache.Delete(ctx, productCacheKey(id))

	return nil
}
