// Package cart maintains the local view of the shopping cart and keeps the
// remote and on-device copies eventually consistent. The local state is
// authoritative for the UI: remote sync failures are logged and swallowed,
// never rolled back.
//
// Merge identity is (product id, selected attributes); RemoveFromCart and
// UpdateQuantity deliberately match on product id alone, removing or updating
// every attribute variant at once, mirroring the backend's web client.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/shopwave/mobile-core/pkg/auth"
	pkgerrors "github.com/shopwave/mobile-core/pkg/errors"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/metrics"
	"github.com/shopwave/mobile-core/pkg/storage"
	"github.com/shopwave/mobile-core/pkg/types"
	"go.uber.org/multierr"
)

const syncLabel = "cart"

// RemoteCart is the slice of the API client the cart store needs.
type RemoteCart interface {
	GetCart(ctx context.Context) ([]types.CartLineItem, error)
	PutCart(ctx context.Context, items []types.CartLineItem) error
}

// TokenSource yields the stored bearer token, empty when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// State is a snapshot of the cart. Totals are always derived from the item
// list, never patched incrementally.
type State struct {
	Items      []types.CartLineItem
	TotalItems int
	TotalPrice decimal.Decimal
	IsLoading  bool
}

// StoreParams groups dependencies for the cart store.
type StoreParams struct {
	Remote  RemoteCart
	Storage storage.Store
	Tokens  TokenSource
	Logger  *logger.Logger
	Metrics *metrics.ClientMetrics
}

type Store struct {
	mu      sync.Mutex
	state   State
	remote  RemoteCart
	storage storage.Store
	tokens  TokenSource
	logg    *logger.Logger
	metrics *metrics.ClientMetrics
}

// NewStore builds a cart store with the required dependencies.
func NewStore(params StoreParams) (*Store, error) {
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote cart is required")
	}
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "storage is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token source is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Store{
		state:   State{Items: []types.CartLineItem{}, TotalPrice: decimal.Zero},
		remote:  params.Remote,
		storage: params.Storage,
		tokens:  params.Tokens,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// State returns a snapshot of the current cart state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	items := make([]types.CartLineItem, len(s.state.Items))
	copy(items, s.state.Items)
	snapshot := s.state
	snapshot.Items = items
	return snapshot
}

// AddToCart merges the product into the cart. An existing line item with the
// same product id and an attribute map equal by value has its quantity
// incremented; otherwise a new line item is appended. Quantity defaults to 1,
// stock is not clamped here.
func (s *Store) AddToCart(ctx context.Context, product types.Product, quantity int, attributes map[string]string) {
	if quantity < 1 {
		quantity = 1
	}
	cloned := make(map[string]string, len(attributes))
	for k, v := range attributes {
		cloned[k] = v
	}

	s.mu.Lock()
	merged := false
	for i := range s.state.Items {
		if s.state.Items[i].Matches(product.ID, cloned) {
			s.state.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.state.Items = append(s.state.Items, types.CartLineItem{
			Product:            product,
			Quantity:           quantity,
			SelectedAttributes: cloned,
		})
	}
	s.recomputeLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// RemoveFromCart drops every line item with the given product id, regardless
// of attribute variant.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	kept := s.state.Items[:0]
	for _, item := range s.state.Items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	s.state.Items = kept
	s.recomputeLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// UpdateQuantity sets the quantity for every line item with the given product
// id. Negative values clamp to 0, and 0 removes the line item.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 0 {
		quantity = 0
	}

	s.mu.Lock()
	kept := make([]types.CartLineItem, 0, len(s.state.Items))
	for _, item := range s.state.Items {
		if item.Product.ID == productID {
			item.Quantity = quantity
		}
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	s.state.Items = kept
	s.recomputeLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// ClearCart empties the item list and resets the totals.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.state.Items = []types.CartLineItem{}
	s.recomputeLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// Load runs the mount protocol: remote cart when a token is present, then the
// user-scoped local copy, then the guest copy. Totals are recomputed from the
// loaded item list, never trusted from storage. Failures fall through to the
// next tier and are never returned to the caller.
func (s *Store) Load(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "reading auth token for cart load")
	}

	if token != "" {
		userID := auth.UserID(token)
		items, err := s.remote.GetCart(ctx)
		if err == nil {
			s.replaceItems(items)
			if userID != "" {
				s.backup(ctx, storage.UserCartKey(userID), items)
			}
			return
		}
		s.logg.Error(ctx, "loading cart from api", err)

		if userID != "" {
			if items, ok := s.loadLocal(ctx, storage.UserCartKey(userID)); ok {
				s.replaceItems(items)
				return
			}
		}
	}

	if items, ok := s.loadLocal(ctx, storage.KeyCart); ok {
		s.replaceItems(items)
	}
}

// RefreshCart force-refetches the remote cart and replaces local state
// wholesale: last writer wins against any unsynced local change. Without a
// token it is a no-op. Errors are logged and swallowed.
func (s *Store) RefreshCart(ctx context.Context) {
	token, err := s.tokens.Token(ctx)
	if err != nil || token == "" {
		s.logg.Debug(ctx, "no auth token, skipping cart refresh")
		return
	}

	s.setLoading(true)
	defer s.setLoading(false)

	items, err := s.remote.GetCart(ctx)
	if err != nil {
		s.logg.Error(ctx, "refreshing cart from api", err)
		return
	}
	s.replaceItems(items)
	if userID := auth.UserID(token); userID != "" {
		s.backup(ctx, storage.UserCartKey(userID), items)
	}
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.state.IsLoading = loading
	s.mu.Unlock()
}

func (s *Store) replaceItems(items []types.CartLineItem) {
	if items == nil {
		items = []types.CartLineItem{}
	}
	s.mu.Lock()
	s.state.Items = items
	s.recomputeLocked()
	s.mu.Unlock()
}

func (s *Store) recomputeLocked() {
	totalItems := 0
	totalPrice := decimal.Zero
	for _, item := range s.state.Items {
		totalItems += item.Quantity
		totalPrice = totalPrice.Add(item.LineTotal())
	}
	s.state.TotalItems = totalItems
	s.state.TotalPrice = totalPrice
}

// persist writes the cart through to device storage and, when authenticated,
// to the remote cart endpoint (full replace). Writes are suppressed while a
// load is in flight so a slow load does not get clobbered.
func (s *Store) persist(ctx context.Context, snapshot State) {
	if snapshot.IsLoading {
		return
	}

	payload, err := json.Marshal(snapshot.Items)
	if err != nil {
		s.logg.Error(ctx, "encoding cart for persistence", err)
		return
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "reading auth token for cart sync")
	}

	if token == "" {
		if err := s.storage.Set(ctx, storage.KeyCart, payload); err != nil {
			s.logg.Error(ctx, "saving guest cart", err)
			s.metrics.IncSyncFailure(syncLabel)
			return
		}
		s.metrics.IncSyncSuccess(syncLabel)
		return
	}

	var errs error
	if userID := auth.UserID(token); userID != "" {
		errs = multierr.Append(errs, s.storage.Set(ctx, storage.UserCartKey(userID), payload))
	}
	errs = multierr.Append(errs, s.remote.PutCart(ctx, snapshot.Items))
	if errs != nil {
		s.logg.Error(ctx, "syncing cart", errs)
		s.metrics.IncSyncFailure(syncLabel)
		return
	}
	s.metrics.IncSyncSuccess(syncLabel)
}

func (s *Store) backup(ctx context.Context, key string, items []types.CartLineItem) {
	payload, err := json.Marshal(items)
	if err != nil {
		s.logg.Error(ctx, "encoding cart backup", err)
		return
	}
	if err := s.storage.Set(ctx, key, payload); err != nil {
		s.logg.Error(ctx, "writing cart backup", err)
	}
}

func (s *Store) loadLocal(ctx context.Context, key string) ([]types.CartLineItem, bool) {
	value, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logg.Error(ctx, "reading cart from storage", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var items []types.CartLineItem
	if err := json.Unmarshal(value, &items); err != nil {
		s.logg.Error(ctx, "decoding stored cart", err)
		return nil, false
	}
	return items, true
}
