package review

import (
	"context"

	"fempowered-storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, r domain.Review) (*domain.Review, error)
	Update(ctx context.Context, id int64, rating int, body string) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	GetByProductAndUser(ctx context.Context, productID, userID int64) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
	// HasPaidOrderLine reports whether the user has a paid order containing
	// the product, the verified-buyer check. Any size counts.
	HasPaidOrderLine(ctx context.Context, userID, productID int64) (bool, error)
}
