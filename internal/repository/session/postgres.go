package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, token string) (Data, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM sessions WHERE token = $1`, token).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Data{}, nil
		}
		return nil, err
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		// A corrupt payload resets the session rather than locking the
		// visitor out.
		return Data{}, nil
	}
	return data, nil
}

func (r *postgresRepo) Save(ctx context.Context, token string, data Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO sessions (token, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (token) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
`
	_, err = r.pool.Exec(ctx, q, token, raw)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}
