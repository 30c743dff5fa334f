package review

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fempowered-storefront/internal/domain"
)

// verified_buyer is derived, not stored, so it stays correct when a payment
// lands after the review was written.
const reviewColumns = `
r.id, r.product_id, r.user_id, COALESCE(u.full_name, ''), r.rating, COALESCE(r.body, ''),
EXISTS (
    SELECT 1
    FROM order_items oi
    JOIN orders o ON o.id = oi.order_id
    WHERE o.user_id = r.user_id
      AND o.status = 'paid'
      AND oi.product_id = r.product_id
) AS verified_buyer,
r.created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, in domain.Review) (*domain.Review, error) {
	const q = `
INSERT INTO reviews (product_id, user_id, rating, body)
VALUES ($1, $2, $3, NULLIF($4, ''))
RETURNING id, created_at
`
	out := in
	err := r.pool.QueryRow(ctx, q, in.ProductID, in.UserID, in.Rating, in.Body).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("review repo: create product=%d user=%d error=%v", in.ProductID, in.UserID, err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Update(ctx context.Context, id int64, rating int, body string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE reviews SET rating = $2, body = NULLIF($3, '') WHERE id = $1`, id, rating, body)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	const q = `
SELECT ` + reviewColumns + `
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.id = $1
`
	return r.fetch(ctx, q, id)
}

func (r *postgresRepo) GetByProductAndUser(ctx context.Context, productID, userID int64) (*domain.Review, error) {
	const q = `
SELECT ` + reviewColumns + `
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.product_id = $1 AND r.user_id = $2
`
	return r.fetch(ctx, q, productID, userID)
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	const q = `
SELECT ` + reviewColumns + `
FROM reviews r
JOIN users u ON u.id = r.user_id
WHERE r.product_id = $1
ORDER BY r.created_at DESC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Body, &rv.VerifiedBuyer, &rv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	return result, rows.Err()
}

func (r *postgresRepo) HasPaidOrderLine(ctx context.Context, userID, productID int64) (bool, error) {
	const q = `
SELECT EXISTS (
    SELECT 1
    FROM order_items oi
    JOIN orders o ON o.id = oi.order_id
    WHERE o.user_id = $1
      AND o.status = 'paid'
      AND oi.product_id = $2
)
`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, userID, productID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...interface{}) (*domain.Review, error) {
	var rv domain.Review
	err := r.pool.QueryRow(ctx, q, args...).Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Body, &rv.VerifiedBuyer, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}
