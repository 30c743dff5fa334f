package user

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fempowered-storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	const q = `
INSERT INTO users (email, password_hash, full_name)
VALUES ($1, $2, $3)
RETURNING id, email, password_hash, COALESCE(full_name, ''), created_at
`
	return r.scanUser(r.pool.QueryRow(ctx, q, strings.ToLower(u.Email), u.PasswordHash, u.FullName))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id, email, password_hash, COALESCE(full_name, ''), created_at
FROM users
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `
SELECT id, email, password_hash, COALESCE(full_name, ''), created_at
FROM users
WHERE id = $1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) UpsertAddress(ctx context.Context, a domain.UserAddress) error {
	const q = `
INSERT INTO user_addresses (
    user_id, full_name, email, phone,
    line1, line2, postal_code, city, country,
    billing_same_as_shipping,
    billing_line1, billing_line2, billing_postal_code, billing_city, billing_country,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
ON CONFLICT (user_id) DO UPDATE SET
    full_name = EXCLUDED.full_name,
    email = EXCLUDED.email,
    phone = EXCLUDED.phone,
    line1 = EXCLUDED.line1,
    line2 = EXCLUDED.line2,
    postal_code = EXCLUDED.postal_code,
    city = EXCLUDED.city,
    country = EXCLUDED.country,
    billing_same_as_shipping = EXCLUDED.billing_same_as_shipping,
    billing_line1 = EXCLUDED.billing_line1,
    billing_line2 = EXCLUDED.billing_line2,
    billing_postal_code = EXCLUDED.billing_postal_code,
    billing_city = EXCLUDED.billing_city,
    billing_country = EXCLUDED.billing_country,
    updated_at = now()
`
	_, err := r.pool.Exec(ctx, q,
		a.UserID, a.FullName, a.Email, a.Phone,
		a.Shipping.Line1, a.Shipping.Line2, a.Shipping.PostalCode, a.Shipping.City, a.Shipping.Country,
		a.BillingSameAsShipping,
		a.Billing.Line1, a.Billing.Line2, a.Billing.PostalCode, a.Billing.City, a.Billing.Country,
	)
	if err != nil {
		r.logger.Printf("user repo: upsert address user=%d error=%v", a.UserID, err)
	}
	return err
}

func (r *postgresRepo) GetAddress(ctx context.Context, userID int64) (*domain.UserAddress, error) {
	const q = `
SELECT user_id, full_name, email, phone,
       line1, line2, postal_code, city, country,
       billing_same_as_shipping,
       billing_line1, billing_line2, billing_postal_code, billing_city, billing_country,
       updated_at
FROM user_addresses
WHERE user_id = $1
`
	var a domain.UserAddress
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&a.UserID, &a.FullName, &a.Email, &a.Phone,
		&a.Shipping.Line1, &a.Shipping.Line2, &a.Shipping.PostalCode, &a.Shipping.City, &a.Shipping.Country,
		&a.BillingSameAsShipping,
		&a.Billing.Line1, &a.Billing.Line2, &a.Billing.PostalCode, &a.Billing.City, &a.Billing.Country,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("user repo: scan error=%v", err)
		return nil, err
	}
	return &u, nil
}
