package catalog

import (
	"context"
	"strings"

	"fempowered-storefront/internal/domain"
	productrepo "fempowered-storefront/internal/repository/product"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// ListInput is the unvalidated query-string view of a catalog listing.
type ListInput struct {
	Query    string
	Category string
	Color    string
	Sort     string
	Limit    int
	Offset   int
}

// List returns a filtered, sorted catalog page.
func (s *Service) List(ctx context.Context, in ListInput) ([]domain.Product, error) {
	f := productrepo.ListFilter{
		Query:    strings.TrimSpace(in.Query),
		Category: strings.TrimSpace(in.Category),
		Color:    strings.TrimSpace(in.Color),
		Sort:     strings.TrimSpace(in.Sort),
		Limit:    in.Limit,
		Offset:   in.Offset,
	}
	if f.Limit <= 0 || f.Limit > maxPageSize {
		f.Limit = defaultPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Facets are the distinct filterable values across the catalog.
type Facets struct {
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
}

func (s *Service) Facets(ctx context.Context) (*Facets, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	colors, err := s.repo.Colors(ctx)
	if err != nil {
		return nil, err
	}
	return &Facets{Categories: categories, Colors: colors}, nil
}
