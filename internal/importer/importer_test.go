package importer

import (
	"context"
	"strings"
	"testing"

	"fempowered-storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,category,color,description,price_cents,currency,has_sizes,image_url
Empower Tee,Tops,Black,Organic cotton tee,29900,sek,true,https://example.com/tee.jpg
Steel Water Bottle,Gear,,Insulated 500 ml bottle,19900,,false,
,gear,,,100,,,
`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, "sek")

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}

	first := repo.items[0]
	if first.Name != "Empower Tee" || first.Category != "tops" || first.PriceCents != 29900 {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if !first.HasSizes || first.ImageURL != "https://example.com/tee.jpg" {
		t.Fatalf("expected sized product with image, got %+v", first)
	}

	second := repo.items[1]
	if second.Currency != "sek" {
		t.Fatalf("expected default currency fallback, got %q", second.Currency)
	}
	if second.HasSizes {
		t.Fatalf("expected unsized product, got %+v", second)
	}
}

func TestCSVImporter_RunRejectsInvalidRow(t *testing.T) {
	csvData := `name,category,price_cents
Empower Tee,tops,0`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, "sek")

	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error for row without a price")
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected no products saved, got %d", len(repo.items))
	}
}

func TestCSVImporter_RunToleratesColumnOrder(t *testing.T) {
	csvData := `price_cents,name,category
15900,Canvas Tote,accessories`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, "sek")

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 1 || repo.items[0].PriceCents != 15900 {
		t.Fatalf("expected reordered columns to import, got %+v", repo.items)
	}
}
