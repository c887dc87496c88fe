package api

import (
	"context"

	"github.com/shopwave/mobile-core/pkg/types"
)

// TimelinePayload is a timeline entry as it appears on the wire, with the
// timestamp still a string. The order store normalizes it.
type TimelinePayload struct {
	Stage       string `json:"stage"`
	Timestamp   string `json:"timestamp,omitempty"`
	Description string `json:"description,omitempty"`
}

// OrderPayload is an order as returned by the API. Date fields arrive as
// strings in whatever format the backend emits; they shadow the typed fields
// on the embedded Order and are normalized by the order store.
type OrderPayload struct {
	types.Order
	CreatedAt         string            `json:"createdAt,omitempty"`
	UpdatedAt         string            `json:"updatedAt,omitempty"`
	EstimatedDelivery string            `json:"estimatedDelivery,omitempty"`
	Timeline          []TimelinePayload `json:"timeline,omitempty"`
}

// CreateOrderRequest matches POST /api/orders. Items are the raw cart line
// items; the backend takes the snapshot.
type CreateOrderRequest struct {
	Items           []types.CartLineItem  `json:"items"`
	DeliveryAddress types.DeliveryAddress `json:"deliveryAddress"`
	PaymentInfo     types.PaymentInfo     `json:"paymentInfo"`
	Pricing         types.OrderPricing    `json:"pricing"`
	OrderNotes      string                `json:"orderNotes,omitempty"`
}

// ListOrders returns the authenticated user's order history.
func (c *Client) ListOrders(ctx context.Context) ([]OrderPayload, error) {
	var env struct {
		OK     bool           `json:"ok"`
		Orders []OrderPayload `json:"orders"`
		Error  string         `json:"error,omitempty"`
	}
	if err := c.get(ctx, "/api/orders", &env); err != nil {
		return nil, err
	}
	if !env.OK {
		return nil, remoteError(env.Error, "listing orders failed")
	}
	return env.Orders, nil
}

// CreateOrder places a new order and returns it with its server-assigned id.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderPayload, string, error) {
	var env struct {
		OK      bool          `json:"ok"`
		Order   *OrderPayload `json:"order"`
		OrderID string        `json:"orderId"`
		Error   string        `json:"error,omitempty"`
	}
	if err := c.post(ctx, "/api/orders", req, &env); err != nil {
		return nil, "", err
	}
	if !env.OK || env.Order == nil {
		return nil, "", remoteError(env.Error, "order creation failed")
	}
	return env.Order, env.OrderID, nil
}

// GetOrder fetches a single order. A missing order surfaces as a NOT_FOUND
// coded error from the 404 response.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderPayload, error) {
	var env struct {
		OK    bool          `json:"ok"`
		Order *OrderPayload `json:"order"`
		Error string        `json:"error,omitempty"`
	}
	if err := c.get(ctx, "/api/orders/"+orderID, &env); err != nil {
		return nil, err
	}
	if !env.OK || env.Order == nil {
		return nil, remoteError(env.Error, "order fetch failed")
	}
	return env.Order, nil
}
