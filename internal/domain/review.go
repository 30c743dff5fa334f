package domain

import "time"

// Review is one user's review of a product. A user may review a product at
// most once.
type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	UserID    int64     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body,omitempty"`
	// VerifiedBuyer is true when the reviewer has a paid order line for the
	// product, in any size.
	VerifiedBuyer bool      `json:"verifiedBuyer"`
	CreatedAt     time.Time `json:"createdAt"`
}
