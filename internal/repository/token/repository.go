package token

import (
	"context"
	"time"
)

// Token is one issued bearer token bound to a user.
type Token struct {
	Token     string
	UserID    int64
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
	// DeleteExpired prunes tokens past their expiry.
	DeleteExpired(ctx context.Context) (int64, error)
}
