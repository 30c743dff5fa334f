package product

import (
	"context"

	"fempowered-storefront/internal/domain"
)

// ListFilter narrows and orders a catalog listing. Sort is one of name_asc,
// name_desc, price_asc, price_desc, newest; anything else falls back to
// name_asc.
type ListFilter struct {
	Query    string
	Category string
	Color    string
	Sort     string
	Limit    int
	Offset   int
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetByName is the order-assembly fallback when an id no longer
	// resolves. Exact, case-insensitive name match.
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Colors(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}
