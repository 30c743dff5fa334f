package domain

// CartLine is one resolved cart entry: a (product, size) pairing with the
// unit price captured when the line was first added, not the live catalog
// price.
type CartLine struct {
	Key            string   `json:"key"`
	ProductID      int64    `json:"productId"`
	Product        *Product `json:"product,omitempty"`
	Name           string   `json:"name"`
	Size           string   `json:"size,omitempty"`
	Quantity       int      `json:"quantity"`
	UnitPriceCents int64    `json:"unitPriceCents"`
	TotalCents     int64    `json:"totalCents"`
}
