package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fempowered-storefront/internal/domain"
)

const productColumns = `id, name, COALESCE(color, ''), COALESCE(description, ''), price_cents, currency, category, COALESCE(image_url, ''), has_sizes, created_at`

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

var sortClauses = map[string]string{
	"name_asc":   "name ASC",
	"name_desc":  "name DESC",
	"price_asc":  "price_cents ASC",
	"price_desc": "price_cents DESC",
	"newest":     "id DESC",
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Product, error) {
	var (
		conds []string
		args  []interface{}
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		args = append(args, c)
		conds = append(conds, fmt.Sprintf("category ILIKE $%d", len(args)))
	}
	if c := strings.TrimSpace(f.Color); c != "" {
		args = append(args, c)
		conds = append(conds, fmt.Sprintf("color ILIKE $%d", len(args)))
	}

	q := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	order, ok := sortClauses[f.Sort]
	if !ok {
		order = sortClauses["name_asc"]
	}
	q += " ORDER BY " + order
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Description, &p.PriceCents, &p.Currency, &p.Category, &p.ImageURL, &p.HasSizes, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.fetch(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *postgresRepo) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	const q = `SELECT ` + productColumns + ` FROM products WHERE lower(name) = lower($1) ORDER BY id ASC LIMIT 1`
	return r.fetch(ctx, q, name)
}

func (r *postgresRepo) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
}

func (r *postgresRepo) Colors(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, `SELECT DISTINCT color FROM products WHERE color IS NOT NULL AND color <> '' ORDER BY color`)
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, color, description, price_cents, currency, category, image_url, has_sizes)
VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, NULLIF($7, ''), $8)
ON CONFLICT (name, category) DO UPDATE SET
    color = EXCLUDED.color,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url,
    has_sizes = EXCLUDED.has_sizes
RETURNING id, created_at
`
	out := p
	err := r.pool.QueryRow(ctx, q, p.Name, p.Color, p.Description, p.PriceCents, p.Currency, p.Category, p.ImageURL, p.HasSizes).
		Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert name=%q error=%v", p.Name, err)
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...interface{}) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, args...).Scan(&p.ID, &p.Name, &p.Color, &p.Description, &p.PriceCents, &p.Currency, &p.Category, &p.ImageURL, &p.HasSizes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: fetch error=%v", err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) distinct(ctx context.Context, q string) ([]string, error) {
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
