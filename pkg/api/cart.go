package api

import (
	"context"

	"github.com/shopwave/mobile-core/pkg/types"
)

// GetCart fetches the server-side cart for the authenticated user. An empty
// cart returns an empty (possibly nil) slice, not an error.
func (c *Client) GetCart(ctx context.Context) ([]types.CartLineItem, error) {
	var env struct {
		OK    bool                 `json:"ok"`
		Cart  []types.CartLineItem `json:"cart"`
		Error string               `json:"error,omitempty"`
	}
	if err := c.get(ctx, "/api/cart", &env); err != nil {
		return nil, err
	}
	if !env.OK {
		return nil, remoteError(env.Error, "cart fetch failed")
	}
	return env.Cart, nil
}

// PutCart replaces the server-side cart with the given item list. This is
// full-replace semantics, not an incremental patch.
func (c *Client) PutCart(ctx context.Context, items []types.CartLineItem) error {
	if items == nil {
		items = []types.CartLineItem{}
	}
	body := struct {
		Items []types.CartLineItem `json:"items"`
	}{Items: items}

	var env struct {
		OK    bool   `json:"ok"`
		Error string `json:"error,omitempty"`
	}
	if err := c.post(ctx, "/api/cart", body, &env); err != nil {
		return err
	}
	if !env.OK {
		return remoteError(env.Error, "cart sync failed")
	}
	return nil
}
