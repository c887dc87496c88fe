package types

import (
	"maps"

	"github.com/shopspring/decimal"
)

// CartLineItem is one cart row. Identity for merging is the pair
// (product id, selected attributes): the same product added with different
// attribute maps yields distinct line items.
type CartLineItem struct {
	Product            Product           `json:"product"`
	Quantity           int               `json:"quantity"`
	SelectedAttributes map[string]string `json:"selectedAttributes,omitempty"`
}

// Matches reports whether the line item has the given product id and an
// attribute map equal by value. Nil and empty maps compare equal.
func (li CartLineItem) Matches(productID string, attributes map[string]string) bool {
	return li.Product.ID == productID && maps.Equal(li.SelectedAttributes, attributes)
}

// LineTotal returns quantity times unit price.
func (li CartLineItem) LineTotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
