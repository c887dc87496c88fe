package types

import "github.com/shopspring/decimal"

// Product is owned by the catalog service; the cart treats it as an opaque
// value object and never mutates it.
type Product struct {
	ID          string            `json:"_id"`
	SKU         string            `json:"sku,omitempty"`
	Name        string            `json:"name"`
	Price       decimal.Decimal   `json:"price"`
	Images      []string          `json:"images,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
	Stock       int               `json:"stock"`
	Status      string            `json:"status,omitempty"`
	Brand       string            `json:"brand,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// PrimaryImage returns the first catalog image, or empty when there is none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Category is a catalog grouping, read-only to this client.
type Category struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Promotion is a marketing banner entry, read-only to this client.
type Promotion struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// User is the authenticated account as returned by the auth endpoints.
type User struct {
	ID        string `json:"_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}
