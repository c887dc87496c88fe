// Package orders holds the order history and the currently viewed order.
// Orders are read-mostly: the store never mutates an order after creation,
// it only re-fetches to observe server-side status changes.
package orders

import (
	"context"
	"sync"
	"time"

	"github.com/shopwave/mobile-core/pkg/api"
	pkgerrors "github.com/shopwave/mobile-core/pkg/errors"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/metrics"
	"github.com/shopwave/mobile-core/pkg/types"
)

const syncLabel = "orders"

// RemoteOrders is the slice of the API client the order store needs.
type RemoteOrders interface {
	ListOrders(ctx context.Context) ([]api.OrderPayload, error)
	CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*api.OrderPayload, string, error)
	GetOrder(ctx context.Context, orderID string) (*api.OrderPayload, error)
}

// TokenSource yields the stored bearer token, empty when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// State is a snapshot of the order store. Err carries the last load failure
// so the UI can show a retry affordance without losing the stale list.
type State struct {
	Orders       []types.Order
	CurrentOrder *types.Order
	IsLoading    bool
	Err          error
}

// StoreParams groups dependencies for the order store.
type StoreParams struct {
	Remote  RemoteOrders
	Tokens  TokenSource
	Logger  *logger.Logger
	Metrics *metrics.ClientMetrics
}

type Store struct {
	mu      sync.Mutex
	state   State
	remote  RemoteOrders
	tokens  TokenSource
	logg    *logger.Logger
	metrics *metrics.ClientMetrics
}

func NewStore(params StoreParams) (*Store, error) {
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote orders is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token source is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{
		state:   State{Orders: []types.Order{}},
		remote:  params.Remote,
		tokens:  params.Tokens,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// State returns a snapshot of the current order state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := make([]types.Order, len(s.state.Orders))
	copy(orders, s.state.Orders)
	snapshot := s.state
	snapshot.Orders = orders
	if s.state.CurrentOrder != nil {
		current := *s.state.CurrentOrder
		snapshot.CurrentOrder = &current
	}
	return snapshot
}

// LoadOrders fetches the order history. Without a token the list is reset to
// empty and no request is made. On failure the previous list is kept and the
// error is recorded in state for the UI.
func (s *Store) LoadOrders(ctx context.Context) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "reading auth token for order load")
	}
	if token == "" {
		s.mu.Lock()
		s.state.Orders = []types.Order{}
		s.state.Err = nil
		s.mu.Unlock()
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	payloads, err := s.remote.ListOrders(ctx)
	if err != nil {
		s.logg.Error(ctx, "loading orders from api", err)
		s.metrics.IncSyncFailure(syncLabel)
		s.mu.Lock()
		s.state.Err = err
		s.mu.Unlock()
		return err
	}

	orders := make([]types.Order, 0, len(payloads))
	for _, payload := range payloads {
		orders = append(orders, normalizeOrder(payload))
	}

	s.mu.Lock()
	s.state.Orders = orders
	s.state.Err = nil
	s.mu.Unlock()
	s.metrics.IncSyncSuccess(syncLabel)
	return nil
}

// RefreshOrders re-fetches the history, picking up server-side status and
// timeline changes.
func (s *Store) RefreshOrders(ctx context.Context) error {
	return s.LoadOrders(ctx)
}

// CreateOrder places the order, prepends the normalized result to the local
// history and marks it current. The server-assigned public order id is
// returned alongside the order.
func (s *Store) CreateOrder(ctx context.Context, req api.CreateOrderRequest) (*types.Order, string, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	payload, orderID, err := s.remote.CreateOrder(ctx, req)
	if err != nil {
		s.logg.Error(ctx, "creating order", err)
		s.metrics.IncSyncFailure(syncLabel)
		s.mu.Lock()
		s.state.Err = err
		s.mu.Unlock()
		return nil, "", err
	}

	order := normalizeOrder(*payload)
	if order.OrderID == "" {
		order.OrderID = orderID
	}

	s.mu.Lock()
	s.state.Orders = append([]types.Order{order}, s.state.Orders...)
	s.state.CurrentOrder = &order
	s.state.Err = nil
	s.mu.Unlock()
	s.metrics.IncSyncSuccess(syncLabel)

	s.logg.Info(s.logg.WithField(ctx, "order_id", order.OrderID), "order placed")
	return &order, order.OrderID, nil
}

// GetOrderByID fetches a single order from the API. Always a fresh fetch,
// even for orders already in the loaded list: status and timeline advance
// server-side and are only observed by re-query. It returns nil when the
// order does not exist or the lookup fails; callers render the missing-order
// state either way.
func (s *Store) GetOrderByID(ctx context.Context, orderID string) *types.Order {
	payload, err := s.remote.GetOrder(ctx, orderID)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			s.logg.Debug(s.logg.WithField(ctx, "order_id", orderID), "order not found")
		} else {
			s.logg.Error(ctx, "fetching order by id", err)
		}
		return nil
	}
	order := normalizeOrder(*payload)
	return &order
}

// SetCurrentOrder pins the order the UI is viewing; pass nil to clear it.
func (s *Store) SetCurrentOrder(order *types.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order == nil {
		s.state.CurrentOrder = nil
		return
	}
	current := *order
	s.state.CurrentOrder = &current
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.state.IsLoading = loading
	s.mu.Unlock()
}

// normalizeOrder converts the wire payload into the typed order, parsing the
// string date fields. Unparseable dates become zero times rather than errors;
// the rest of the order is still usable.
func normalizeOrder(payload api.OrderPayload) types.Order {
	order := payload.Order
	order.CreatedAt = parseWireTime(payload.CreatedAt)
	order.UpdatedAt = parseWireTime(payload.UpdatedAt)
	order.EstimatedDelivery = parseWireTime(payload.EstimatedDelivery)
	if len(payload.Timeline) > 0 {
		timeline := make([]types.TimelineEntry, 0, len(payload.Timeline))
		for _, entry := range payload.Timeline {
			timeline = append(timeline, types.TimelineEntry{
				Stage:       entry.Stage,
				Timestamp:   parseWireTime(entry.Timestamp),
				Description: entry.Description,
			})
		}
		order.Timeline = timeline
	}
	return order
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseWireTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range wireTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
