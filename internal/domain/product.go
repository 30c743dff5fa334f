package domain

import "time"

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	HasSizes    bool      `json:"hasSizes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Sizes lists the variants a sized product can be ordered in.
var Sizes = []string{"XS", "S", "M", "L", "XL"}

// ValidSize reports whether size is an allowed variant. The empty string is
// valid and means the product has no size dimension.
func ValidSize(size string) bool {
	if size == "" {
		return true
	}
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}
