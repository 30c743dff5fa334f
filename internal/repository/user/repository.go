package user

import (
	"context"

	"fempowered-storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// UpsertAddress replaces the user's single saved address profile.
	UpsertAddress(ctx context.Context, a domain.UserAddress) error
	GetAddress(ctx context.Context, userID int64) (*domain.UserAddress, error)
}
