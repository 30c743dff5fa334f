package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"fempowered-storefront/internal/domain"
	productrepo "fempowered-storefront/internal/repository/product"
)

// Apply inserts demo catalog data for manual testing. It is idempotent via
// the product upsert on (name, category).
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	repo := productrepo.NewPostgres(pool, logger)

	products := []domain.Product{
		{
			Name:        "Empower Tee",
			Color:       "black",
			Description: "Organic cotton tee with the signature print",
			PriceCents:  29900,
			Currency:    "sek",
			Category:    "tops",
			ImageURL:    "/media/empower-tee.jpg",
			HasSizes:    true,
		},
		{
			Name:        "Studio Leggings",
			Color:       "navy",
			Description: "High-waist leggings for training and everyday wear",
			PriceCents:  54900,
			Currency:    "sek",
			Category:    "bottoms",
			ImageURL:    "/media/studio-leggings.jpg",
			HasSizes:    true,
		},
		{
			Name:        "Everyday Hoodie",
			Color:       "grey",
			Description: "Heavyweight brushed fleece hoodie",
			PriceCents:  69900,
			Currency:    "sek",
			Category:    "tops",
			ImageURL:    "/media/everyday-hoodie.jpg",
			HasSizes:    true,
		},
		{
			Name:        "Steel Water Bottle",
			Description: "Insulated 750 ml bottle",
			PriceCents:  19900,
			Currency:    "sek",
			Category:    "gear",
			ImageURL:    "/media/steel-bottle.jpg",
		},
		{
			Name:        "Canvas Tote",
			Color:       "natural",
			Description: "Sturdy tote for gym and groceries",
			PriceCents:  14900,
			Currency:    "sek",
			Category:    "gear",
			ImageURL:    "/media/canvas-tote.jpg",
		},
	}

	for _, p := range products {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
	}
	return nil
}
