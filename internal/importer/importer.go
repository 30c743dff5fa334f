package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"fempowered-storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	currency    string
}

func NewCSVImporter(r io.Reader, repo ProductWriter, currency string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		currency:    currency,
	}
}

type csvRow struct {
	Name     string
	Category string
	Color    string
	Desc     string
	Cents    int64
	Currency string
	HasSizes bool
	ImageURL string
}

// Run parses CSV rows and upserts one product per row, keyed by (name, category).
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Name == "" || row.Category == "" || row.Cents <= 0 {
		return fmt.Errorf("invalid product row (missing required fields) for name %q", row.Name)
	}

	currency := row.Currency
	if currency == "" {
		currency = i.currency
	}

	p := domain.Product{
		Name:        row.Name,
		Category:    row.Category,
		Color:       row.Color,
		Description: row.Desc,
		PriceCents:  row.Cents,
		Currency:    currency,
		HasSizes:    row.HasSizes,
		ImageURL:    row.ImageURL,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	name := pick(record, index, "name")
	if name == "" {
		return nil
	}

	var cents int64
	if centStr := pick(record, index, "price_cents"); centStr != "" {
		cents, _ = strconv.ParseInt(centStr, 10, 64)
	}

	hasSizes := false
	switch strings.ToLower(pick(record, index, "has_sizes")) {
	case "1", "true", "yes":
		hasSizes = true
	}

	return &csvRow{
		Name:     name,
		Category: strings.ToLower(pick(record, index, "category")),
		Color:    pick(record, index, "color"),
		Desc:     pick(record, index, "description"),
		Cents:    cents,
		Currency: strings.ToLower(pick(record, index, "currency")),
		HasSizes: hasSizes,
		ImageURL: pick(record, index, "image_url"),
	}
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
