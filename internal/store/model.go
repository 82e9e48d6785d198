package store

import (
	"time"

	"github.com/google/uuid"
)

const (
	// PurchaseStatusPending marks a purchase waiting for manual fulfilment.
	// Fulfilment itself happens outside this service; operators update the
	// row directly.
	PurchaseStatusPending = "pending"

	// LanguageAll marks content visible regardless of user language.
	LanguageAll = "all"
)

// Product is a store item priced in loyalty stars.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Language    string    `json:"language"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Purchase records a completed debit against a product. The price is frozen
// at purchase time so later product edits do not rewrite history.
type Purchase struct {
	ID              uuid.UUID `json:"id"`
	UserID          int64     `json:"userId"`
	ProductID       uuid.UUID `json:"productId"`
	PriceAtPurchase int       `json:"priceAtPurchase"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}
