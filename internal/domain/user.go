package domain

import "time"

// User is a registered storefront account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserAddress is the single saved address profile per user, upserted from
// the last successful checkout or edited directly.
type UserAddress struct {
	UserID                int64     `json:"-"`
	FullName              string    `json:"fullName,omitempty"`
	Email                 string    `json:"email,omitempty"`
	Phone                 string    `json:"phone,omitempty"`
	Shipping              Address   `json:"shipping"`
	BillingSameAsShipping bool      `json:"billingSameAsShipping"`
	Billing               Address   `json:"billing"`
	UpdatedAt             time.Time `json:"updatedAt"`
}
