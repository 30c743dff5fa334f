package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"

	"fempowered-storefront/internal/domain"
)

// SessionKey is the session entry the cart is stored under.
const SessionKey = "cart"

// Session is the minimal contract the cart needs from the surrounding
// session layer: read a raw value, replace it, and flag the session dirty so
// the request cycle persists it.
type Session interface {
	Get(key string) (json.RawMessage, bool)
	Set(key string, value interface{})
	MarkModified()
}

// Catalog resolves live products for cart iteration.
type Catalog interface {
	FindProduct(ctx context.Context, id int64) (*domain.Product, error)
	FindProductByName(ctx context.Context, name string) (*domain.Product, error)
}

// storedLine is the canonical session shape of one cart line. A zero
// UnitPriceCents means the line came from a legacy session shape that never
// stored a price; iteration falls back to the live catalog price for it.
type storedLine struct {
	ProductID      int64  `json:"product_id"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Size           string `json:"size,omitempty"`
	Name           string `json:"name,omitempty"`
}

// Store is a session-scoped cart keyed by "productID:size" ("-" for no
// size). It is not safe for concurrent use; the session layer guarantees
// one request at a time per session.
type Store struct {
	session Session
	catalog Catalog
	logger  *log.Logger
	lines   map[string]storedLine
}

// New loads the cart from the session, normalizing any legacy stored shapes
// into canonical lines. Malformed entries are dropped with a log line, never
// an error; old deployments left several shapes behind and the cart must
// survive all of them.
func New(session Session, catalog Catalog, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Store{
		session: session,
		catalog: catalog,
		logger:  logger,
		lines:   map[string]storedLine{},
	}
	raw, ok := session.Get(SessionKey)
	if !ok || len(raw) == 0 {
		return s
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Printf("cart: unreadable session payload, starting empty: %v", err)
		return s
	}
	for key, entry := range entries {
		for k, line := range normalizeEntry(key, entry, s.logger) {
			if line.Quantity <= 0 {
				continue
			}
			s.lines[k] = line
		}
	}
	return s
}

// Add inserts or adjusts the line for (product, size). A new line captures
// the product's current catalog price. With override the quantity is
// replaced, otherwise incremented. A resulting quantity <= 0 deletes the
// line. The session is always marked modified.
func (s *Store) Add(product *domain.Product, quantity int, size string, override bool) {
	key := lineKey(product.ID, size)
	line, ok := s.lines[key]
	if !ok {
		line = storedLine{
			ProductID:      product.ID,
			Quantity:       0,
			UnitPriceCents: product.PriceCents,
			Size:           normalizeSize(size),
			Name:           product.Name,
		}
	}
	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}
	if line.Quantity <= 0 {
		delete(s.lines, key)
	} else {
		s.lines[key] = line
	}
	s.save()
}

// Remove deletes the line for (productID, size). Removing an absent line is
// a no-op, not an error.
func (s *Store) Remove(productID int64, size string) {
	key := lineKey(productID, size)
	if _, ok := s.lines[key]; !ok {
		return
	}
	delete(s.lines, key)
	s.save()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.lines = map[string]storedLine{}
	s.save()
}

// Count is the number of units in the cart, summed over all stored lines
// without resolving the catalog.
func (s *Store) Count() int {
	n := 0
	for _, line := range s.lines {
		n += line.Quantity
	}
	return n
}

// Lines resolves stored lines against the live catalog and returns them in
// stable key order. Lines whose product no longer exists are skipped, not
// yielded and not counted. Catalog infrastructure errors propagate.
func (s *Store) Lines(ctx context.Context) ([]domain.CartLine, error) {
	keys := make([]string, 0, len(s.lines))
	for k := range s.lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.CartLine, 0, len(keys))
	for _, key := range keys {
		line := s.lines[key]
		product, err := s.catalog.FindProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("cart: skipping line %s, product %d no longer in catalog", key, line.ProductID)
				continue
			}
			return nil, fmt.Errorf("resolve product %d: %w", line.ProductID, err)
		}
		unit := line.UnitPriceCents
		if unit == 0 {
			// Legacy shapes never stored a price.
			unit = product.PriceCents
		}
		name := line.Name
		if name == "" {
			name = product.Name
		}
		out = append(out, domain.CartLine{
			Key:            key,
			ProductID:      line.ProductID,
			Product:        product,
			Name:           name,
			Size:           line.Size,
			Quantity:       line.Quantity,
			UnitPriceCents: unit,
			TotalCents:     unit * int64(line.Quantity),
		})
	}
	return out, nil
}

// TotalCents sums unit price times quantity over the lines that still
// resolve in the catalog.
func (s *Store) TotalCents(ctx context.Context) (int64, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, line := range lines {
		total += line.TotalCents
	}
	return total, nil
}

func (s *Store) save() {
	s.session.Set(SessionKey, s.lines)
	s.session.MarkModified()
}

func lineKey(productID int64, size string) string {
	size = normalizeSize(size)
	if size == "" {
		return fmt.Sprintf("%d:-", productID)
	}
	return fmt.Sprintf("%d:%s", productID, size)
}

func normalizeSize(size string) string {
	size = strings.TrimSpace(size)
	if size == "-" {
		return ""
	}
	return size
}

// parseKey recovers (productID, size) from a stored key. Legacy carts keyed
// entries by the bare product id.
func parseKey(key string) (int64, string, bool) {
	idPart, size, found := strings.Cut(key, ":")
	if !found {
		size = ""
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, normalizeSize(size), true
}

// normalizeEntry converts one stored session entry into canonical lines.
// Three historical shapes are accepted besides the canonical struct:
// a bare int quantity, an object with quantity/qty (price as a decimal
// string), and an object with a nested items_by_size map. Anything else is
// dropped.
func normalizeEntry(key string, entry json.RawMessage, logger *log.Logger) map[string]storedLine {
	productID, keySize, ok := parseKey(key)
	if !ok {
		logger.Printf("cart: dropping entry with malformed key %q", key)
		return nil
	}

	// Bare int quantity: {"7": 2}.
	var flatQty int
	if err := json.Unmarshal(entry, &flatQty); err == nil {
		return map[string]storedLine{
			lineKey(productID, keySize): {ProductID: productID, Quantity: flatQty, Size: keySize},
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(entry, &obj); err != nil {
		logger.Printf("cart: dropping malformed entry %q", key)
		return nil
	}

	// Nested size map: {"items_by_size": {"M": 1, "L": 2}}.
	if sizesRaw, ok := obj["items_by_size"]; ok {
		var sizes map[string]int
		if err := json.Unmarshal(sizesRaw, &sizes); err != nil {
			logger.Printf("cart: dropping entry %q with malformed size map", key)
			return nil
		}
		out := make(map[string]storedLine, len(sizes))
		for size, qty := range sizes {
			k := lineKey(productID, size)
			out[k] = storedLine{ProductID: productID, Quantity: qty, Size: normalizeSize(size)}
		}
		return out
	}

	qty, ok := intField(obj, "quantity")
	if !ok {
		qty, ok = intField(obj, "qty")
	}
	if !ok {
		logger.Printf("cart: dropping entry %q with no recognizable quantity", key)
		return nil
	}

	line := storedLine{ProductID: productID, Quantity: qty, Size: keySize}
	if idOverride, ok := intField(obj, "product_id"); ok && idOverride > 0 {
		line.ProductID = int64(idOverride)
	}
	if raw, ok := obj["size"]; ok {
		var size string
		if json.Unmarshal(raw, &size) == nil {
			line.Size = normalizeSize(size)
		}
	}
	if raw, ok := obj["name"]; ok {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			line.Name = name
		}
	}
	if cents, ok := intField(obj, "unit_price_cents"); ok {
		line.UnitPriceCents = int64(cents)
	} else if raw, ok := obj["price"]; ok {
		if cents, err := parsePriceCents(raw); err == nil {
			line.UnitPriceCents = cents
		} else {
			logger.Printf("cart: entry %q has unparseable price, deferring to catalog: %v", key, err)
		}
	}
	return map[string]storedLine{lineKey(line.ProductID, line.Size): line}
}

func intField(obj map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := obj[key]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// parsePriceCents converts a legacy price value, a decimal string like
// "49.99" or a JSON number, into minor currency units. Fractions beyond two
// digits round half up.
func parsePriceCents(raw json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var f json.Number
		if err := json.Unmarshal(raw, &f); err != nil {
			return 0, fmt.Errorf("price is neither string nor number")
		}
		s = f.String()
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	whole, frac, _ := strings.Cut(s, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("bad price %q", s)
	}
	cents := units * 100
	if frac == "" {
		return cents, nil
	}
	for len(frac) < 2 {
		frac += "0"
	}
	sub, err := strconv.ParseInt(frac[:2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price fraction %q", s)
	}
	cents += sub
	if len(frac) > 2 && frac[2] >= '5' {
		cents++
	}
	return cents, nil
}
