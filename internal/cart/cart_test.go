package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fempowered-storefront/internal/domain"
)

type stubSession struct {
	values   map[string]json.RawMessage
	modified int
}

func newStubSession() *stubSession {
	return &stubSession{values: map[string]json.RawMessage{}}
}

func (s *stubSession) Get(key string) (json.RawMessage, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *stubSession) Set(key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}
	s.values[key] = raw
}

func (s *stubSession) MarkModified() { s.modified++ }

type stubCatalog struct {
	products map[int64]*domain.Product
	err      error
}

func (c *stubCatalog) FindProduct(_ context.Context, id int64) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (c *stubCatalog) FindProductByName(_ context.Context, name string) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, p := range c.products {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func tee(id int64, cents int64) *domain.Product {
	return &domain.Product{ID: id, Name: "Tee", PriceCents: cents, Currency: "sek", HasSizes: true}
}

func TestAdd_CapturesPriceAtAddTime(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	catalog := &stubCatalog{products: map[int64]*domain.Product{7: product}}
	store := New(sess, catalog, nil)

	store.Add(product, 2, "M", false)

	// Catalog price changes after the add.
	product.PriceCents = 9999

	lines, err := store.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line.Quantity != 2 || line.Size != "M" || line.UnitPriceCents != 4999 {
		t.Fatalf("unexpected line %+v", line)
	}
	if line.TotalCents != 9998 {
		t.Fatalf("expected line total 9998, got %d", line.TotalCents)
	}
}

func TestAdd_IncrementAndOverride(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	store := New(sess, &stubCatalog{products: map[int64]*domain.Product{7: product}}, nil)

	store.Add(product, 2, "M", false)
	store.Add(product, 3, "M", false)
	if got := store.Count(); got != 5 {
		t.Fatalf("expected count 5 after increments, got %d", got)
	}

	store.Add(product, 1, "M", true)
	if got := store.Count(); got != 1 {
		t.Fatalf("expected count 1 after override, got %d", got)
	}
}

func TestAdd_QuantityDroppingToZeroDeletesLine(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	store := New(sess, &stubCatalog{products: map[int64]*domain.Product{7: product}}, nil)

	store.Add(product, 2, "", false)
	store.Add(product, -2, "", false)
	if got := store.Count(); got != 0 {
		t.Fatalf("expected empty cart, got count %d", got)
	}

	store.Add(product, 0, "", true)
	if got := store.Count(); got != 0 {
		t.Fatalf("override to zero must delete the line, got count %d", got)
	}

	lines, err := store.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			t.Fatalf("cart holds a line with non-positive quantity: %+v", l)
		}
	}
}

func TestAdd_SeparateSizesAreSeparateLines(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	store := New(sess, &stubCatalog{products: map[int64]*domain.Product{7: product}}, nil)

	store.Add(product, 1, "M", false)
	store.Add(product, 2, "L", false)

	lines, err := store.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestRemove_AbsentLineIsNoop(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	store := New(sess, &stubCatalog{products: map[int64]*domain.Product{7: product}}, nil)

	store.Add(product, 1, "M", false)
	before := sess.modified

	store.Remove(99, "")
	if sess.modified != before {
		t.Fatalf("removing an absent line must not touch the session")
	}

	store.Remove(7, "M")
	if got := store.Count(); got != 0 {
		t.Fatalf("expected empty cart after remove, got %d", got)
	}
	if sess.modified == before {
		t.Fatalf("removing a present line must mark the session modified")
	}
}

func TestClear_EmptiesCart(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	store := New(sess, &stubCatalog{products: map[int64]*domain.Product{7: product}}, nil)

	store.Add(product, 3, "M", false)
	store.Clear()
	if got := store.Count(); got != 0 {
		t.Fatalf("expected count 0, got %d", got)
	}
}

func TestMutationsMarkSessionModified(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	store := New(sess, &stubCatalog{products: map[int64]*domain.Product{7: product}}, nil)

	store.Add(product, 1, "", false)
	store.Add(product, 1, "", false)
	store.Clear()
	if sess.modified != 3 {
		t.Fatalf("expected 3 modifications, got %d", sess.modified)
	}
}

func TestLines_SkipsDanglingProducts(t *testing.T) {
	sess := newStubSession()
	kept := tee(7, 4999)
	gone := &domain.Product{ID: 8, Name: "Mug", PriceCents: 1200}
	catalog := &stubCatalog{products: map[int64]*domain.Product{7: kept, 8: gone}}
	store := New(sess, catalog, nil)

	store.Add(kept, 1, "M", false)
	store.Add(gone, 2, "", false)

	delete(catalog.products, 8)

	lines, err := store.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != 7 {
		t.Fatalf("expected only the surviving product, got %+v", lines)
	}

	total, err := store.TotalCents(context.Background())
	if err != nil {
		t.Fatalf("TotalCents: %v", err)
	}
	if total != 4999 {
		t.Fatalf("dangling product must not count toward the total, got %d", total)
	}
}

func TestLines_CatalogErrorPropagates(t *testing.T) {
	sess := newStubSession()
	product := tee(7, 4999)
	catalog := &stubCatalog{products: map[int64]*domain.Product{7: product}}
	store := New(sess, catalog, nil)
	store.Add(product, 1, "", false)

	catalog.err = errors.New("connection refused")
	if _, err := store.Lines(context.Background()); err == nil {
		t.Fatalf("expected catalog error to propagate")
	}
}

func TestNew_NormalizesLegacyShapes(t *testing.T) {
	sess := newStubSession()
	sess.values[SessionKey] = json.RawMessage(`{
		"7": 2,
		"8:-": {"qty": "1", "price": "12.50"},
		"9": {"items_by_size": {"M": 1, "L": 2}}
	}`)
	catalog := &stubCatalog{products: map[int64]*domain.Product{
		7: {ID: 7, Name: "Tee", PriceCents: 4999},
		8: {ID: 8, Name: "Mug", PriceCents: 1200},
		9: {ID: 9, Name: "Hoodie", PriceCents: 7000, HasSizes: true},
	}}
	store := New(sess, catalog, nil)

	if got := store.Count(); got != 6 {
		t.Fatalf("expected 6 units across legacy shapes, got %d", got)
	}

	lines, err := store.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines: %v", err)
	}
	byKey := map[string]domain.CartLine{}
	for _, l := range lines {
		byKey[l.Key] = l
	}

	// Flat int shape: price comes from the live catalog.
	if l := byKey["7:-"]; l.Quantity != 2 || l.UnitPriceCents != 4999 {
		t.Fatalf("flat shape normalized badly: %+v", l)
	}
	// qty/price shape: decimal string converted to minor units.
	if l := byKey["8:-"]; l.Quantity != 1 || l.UnitPriceCents != 1250 {
		t.Fatalf("qty/price shape normalized badly: %+v", l)
	}
	// Size-map shape: one line per size.
	if l := byKey["9:M"]; l.Quantity != 1 || l.Size != "M" {
		t.Fatalf("size-map M line normalized badly: %+v", l)
	}
	if l := byKey["9:L"]; l.Quantity != 2 || l.Size != "L" {
		t.Fatalf("size-map L line normalized badly: %+v", l)
	}
}

func TestNew_SkipsMalformedEntries(t *testing.T) {
	sess := newStubSession()
	sess.values[SessionKey] = json.RawMessage(`{
		"7": 2,
		"not-a-product": 3,
		"8": {"unexpected": true},
		"9": {"items_by_size": "oops"}
	}`)
	catalog := &stubCatalog{products: map[int64]*domain.Product{
		7: {ID: 7, Name: "Tee", PriceCents: 4999},
	}}
	store := New(sess, catalog, nil)

	if got := store.Count(); got != 2 {
		t.Fatalf("malformed entries must be skipped, got count %d", got)
	}
}

func TestNew_UnreadablePayloadStartsEmpty(t *testing.T) {
	sess := newStubSession()
	sess.values[SessionKey] = json.RawMessage(`[1,2,3]`)
	store := New(sess, &stubCatalog{}, nil)
	if got := store.Count(); got != 0 {
		t.Fatalf("expected empty cart, got %d", got)
	}
}

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{`"49.99"`, 4999},
		{`"49"`, 4900},
		{`"49.9"`, 4990},
		{`"33.335"`, 3334},
		{`12.5`, 1250},
		{`0`, 0},
	}
	for _, tc := range cases {
		got, err := parsePriceCents(json.RawMessage(tc.in))
		if err != nil {
			t.Fatalf("parsePriceCents(%s): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parsePriceCents(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if _, err := parsePriceCents(json.RawMessage(`"banana"`)); err == nil {
		t.Fatalf("expected error for unparseable price")
	}
}
