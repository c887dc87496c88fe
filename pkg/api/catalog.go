package api

import (
	"context"

	"github.com/shopwave/mobile-core/pkg/types"
)

// ListProducts returns the full catalog listing.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	var env struct {
		OK       bool            `json:"ok"`
		Products []types.Product `json:"products"`
		Error    string          `json:"error,omitempty"`
	}
	if err := c.get(ctx, "/api/products", &env); err != nil {
		return nil, err
	}
	if !env.OK {
		return nil, remoteError(env.Error, "listing products failed")
	}
	return env.Products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, productID string) (*types.Product, error) {
	var env struct {
		OK      bool           `json:"ok"`
		Product *types.Product `json:"product"`
		Error   string         `json:"error,omitempty"`
	}
	if err := c.get(ctx, "/api/products/"+productID, &env); err != nil {
		return nil, err
	}
	if !env.OK || env.Product == nil {
		return nil, remoteError(env.Error, "product fetch failed")
	}
	return env.Product, nil
}

// ListCategories returns the catalog categories.
func (c *Client) ListCategories(ctx context.Context) ([]types.Category, error) {
	var env struct {
		OK         bool             `json:"ok"`
		Categories []types.Category `json:"categories"`
		Error      string           `json:"error,omitempty"`
	}
	if err := c.get(ctx, "/api/categories", &env); err != nil {
		return nil, err
	}
	if !env.OK {
		return nil, remoteError(env.Error, "listing categories failed")
	}
	return env.Categories, nil
}

// ListPromotions returns the active marketing promotions.
func (c *Client) ListPromotions(ctx context.Context) ([]types.Promotion, error) {
	var env struct {
		OK         bool              `json:"ok"`
		Promotions []types.Promotion `json:"promotions"`
		Error      string            `json:"error,omitempty"`
	}
	if err := c.get(ctx, "/api/promotions", &env); err != nil {
		return nil, err
	}
	if !env.OK {
		return nil, remoteError(env.Error, "listing promotions failed")
	}
	return env.Promotions, nil
}
