package order

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fempowered-storefront/internal/domain"
)

const orderColumns = `
id, user_id, full_name, email, phone,
ship_line1, ship_line2, ship_postal_code, ship_city, ship_country,
bill_line1, bill_line2, bill_postal_code, bill_city, bill_country,
shipping_method, currency, subtotal_cents, shipping_cents, total_cents,
payment_intent_id, receipt_url, status, created_at`

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

func (r *postgresRepo) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (
    user_id, full_name, email, phone,
    ship_line1, ship_line2, ship_postal_code, ship_city, ship_country,
    bill_line1, bill_line2, bill_postal_code, bill_city, bill_country,
    shipping_method, currency, subtotal_cents, shipping_cents, total_cents, status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, 'pending')
RETURNING id, created_at
`
	o := domain.Order{
		UserID:          in.UserID,
		FullName:        in.FullName,
		Email:           in.Email,
		Phone:           in.Phone,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		Method:          in.Method,
		Currency:        in.Currency,
		SubtotalCents:   in.SubtotalCents,
		ShippingCents:   in.ShippingCents,
		TotalCents:      in.TotalCents,
		Status:          domain.OrderPending,
	}
	if err := tx.QueryRow(ctx, insertOrder,
		in.UserID, in.FullName, in.Email, in.Phone,
		in.ShippingAddress.Line1, in.ShippingAddress.Line2, in.ShippingAddress.PostalCode, in.ShippingAddress.City, in.ShippingAddress.Country,
		in.BillingAddress.Line1, in.BillingAddress.Line2, in.BillingAddress.PostalCode, in.BillingAddress.City, in.BillingAddress.Country,
		in.Method, in.Currency, in.SubtotalCents, in.ShippingCents, in.TotalCents,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		r.logger.Printf("order repo: create error=%v", err)
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, product_name, size, quantity, unit_price_cents, line_total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`
	for _, item := range in.Items {
		it := domain.OrderItem{
			OrderID:        o.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Size:           item.Size,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: item.UnitPriceCents * int64(item.Quantity),
		}
		if err := tx.QueryRow(ctx, insertItem,
			o.ID, item.ProductID, item.ProductName, nullIfEmpty(item.Size), item.Quantity, item.UnitPriceCents, it.LineTotalCents,
		).Scan(&it.ID); err != nil {
			r.logger.Printf("order repo: create item order_id=%d error=%v", o.ID, err)
			return nil, err
		}
		o.Items = append(o.Items, it)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: created id=%d total_cents=%d items=%d", o.ID, o.TotalCents, len(o.Items))
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*domain.Order, error) {
	return r.fetchOrder(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`, paymentIntentID)
}

func (r *postgresRepo) SetPaymentIntent(ctx context.Context, id int64, paymentIntentID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET payment_intent_id = $1 WHERE id = $2`, paymentIntentID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) MarkPaid(ctx context.Context, id int64, receiptURL string) error {
	const q = `
UPDATE orders
SET status = 'paid', receipt_url = $2
WHERE id = $1 AND status = 'pending'
`
	cmd, err := r.pool.Exec(ctx, q, id, receiptURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		r.logger.Printf("order repo: id=%d pending -> paid", id)
		return nil
	}

	status, err := r.currentStatus(ctx, id)
	if err != nil {
		return err
	}
	if status == domain.OrderPaid {
		// Replayed confirmation, nothing to do. The receipt written by the
		// first transition stays intact.
		return nil
	}
	return domain.ErrInvalidTransition
}

func (r *postgresRepo) MarkFailed(ctx context.Context, id int64) error {
	const q = `
UPDATE orders
SET status = 'failed'
WHERE id = $1 AND status = 'pending'
`
	cmd, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		r.logger.Printf("order repo: id=%d pending -> failed", id)
		return nil
	}
	// A late failure event must never downgrade a paid order.
	if _, err := r.currentStatus(ctx, id); err != nil {
		return err
	}
	return nil
}

func (r *postgresRepo) Cancel(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = 'cancelled' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		status, err := r.currentStatus(ctx, id)
		if err != nil {
			return err
		}
		if status != domain.OrderCancelled {
			return domain.ErrInvalidTransition
		}
	}
	return nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		items, err := r.fetchItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *postgresRepo) ClaimGuestOrders(ctx context.Context, userID int64, email string) (int64, error) {
	const q = `
UPDATE orders
SET user_id = $1
WHERE user_id IS NULL AND lower(email) = lower($2)
`
	cmd, err := r.pool.Exec(ctx, q, userID, email)
	if err != nil {
		return 0, err
	}
	if n := cmd.RowsAffected(); n > 0 {
		r.logger.Printf("order repo: claimed %d guest orders for user=%d", n, userID)
		return n, nil
	}
	return 0, nil
}

func (r *postgresRepo) currentStatus(ctx context.Context, id int64) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *postgresRepo) fetchOrder(ctx context.Context, q string, args ...interface{}) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.fetchItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) fetchItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	const q = `
SELECT id, order_id, product_id, product_name, COALESCE(size, ''), quantity, unit_price_cents, line_total_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Size, &it.Quantity, &it.UnitPriceCents, &it.LineTotalCents); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var phone, intentID, receipt *string
	err := row.Scan(
		&o.ID, &o.UserID, &o.FullName, &o.Email, &phone,
		&o.ShippingAddress.Line1, &o.ShippingAddress.Line2, &o.ShippingAddress.PostalCode, &o.ShippingAddress.City, &o.ShippingAddress.Country,
		&o.BillingAddress.Line1, &o.BillingAddress.Line2, &o.BillingAddress.PostalCode, &o.BillingAddress.City, &o.BillingAddress.Country,
		&o.Method, &o.Currency, &o.SubtotalCents, &o.ShippingCents, &o.TotalCents,
		&intentID, &receipt, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		o.Phone = *phone
	}
	if intentID != nil {
		o.PaymentIntentID = *intentID
	}
	if receipt != nil {
		o.ReceiptURL = *receipt
	}
	return &o, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
