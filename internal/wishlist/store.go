// Package wishlist keeps the saved-for-later product ids. Unlike the cart it
// is device-local only: there is no wishlist endpoint, so persistence goes
// straight to storage under a user-scoped key when authenticated and the
// guest key otherwise.
package wishlist

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopwave/mobile-core/pkg/auth"
	pkgerrors "github.com/shopwave/mobile-core/pkg/errors"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/metrics"
	"github.com/shopwave/mobile-core/pkg/storage"
)

const syncLabel = "wishlist"

// TokenSource yields the stored bearer token, empty when logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// State is a snapshot of the wishlist: an ordered set of product ids,
// insertion order preserved.
type State struct {
	Items     []string
	IsLoading bool
}

// StoreParams groups dependencies for the wishlist store.
type StoreParams struct {
	Storage storage.Store
	Tokens  TokenSource
	Logger  *logger.Logger
	Metrics *metrics.ClientMetrics
}

type Store struct {
	mu      sync.Mutex
	state   State
	storage storage.Store
	tokens  TokenSource
	logg    *logger.Logger
	metrics *metrics.ClientMetrics
}

func NewStore(params StoreParams) (*Store, error) {
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
		state:   State{Items: []string{}},
		storage: params.Storage,
		tokens:  params.Tokens,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// State returns a snapshot of the current wishlist.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddToWishlist saves the product id. Adding an id that is already saved is a
// no-op, so double taps never create duplicates.
func (s *Store) AddToWishlist(ctx context.Context, productID string) {
	s.mu.Lock()
	for _, id := range s.state.Items {
		if id == productID {
			s.mu.Unlock()
			return
		}
	}
	s.state.Items = append(s.state.Items, productID)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// RemoveFromWishlist drops the product id.
func (s *Store) RemoveFromWishlist(ctx context.Context, productID string) {
	s.mu.Lock()
	kept := s.state.Items[:0]
	for _, id := range s.state.Items {
		if id != productID {
			kept = append(kept, id)
		}
	}
	s.state.Items = kept
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// IsInWishlist reports whether the product id is currently saved.
func (s *Store) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.state.Items {
		if id == productID {
			return true
		}
	}
	return false
}

// ClearWishlist empties the saved set.
func (s *Store) ClearWishlist(ctx context.Context) {
	s.mu.Lock()
	s.state.Items = []string{}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
}

// Load reads the saved set from storage, preferring the user-scoped key when
// a token with a user id is present and falling back to the guest key.
// Failures leave the wishlist empty and are never returned.
func (s *Store) Load(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "reading auth token for wishlist load")
	}

	if userID := auth.UserID(token); userID != "" {
		if items, ok := s.loadKey(ctx, storage.UserWishlistKey(userID)); ok {
			s.replaceItems(items)
			return
		}
	}
	if items, ok := s.loadKey(ctx, storage.KeyWishlist); ok {
		s.replaceItems(items)
	}
}

// Refresh re-reads storage, picking up writes made by another store instance.
func (s *Store) Refresh(ctx context.Context) {
	s.Load(ctx)
}

func (s *Store) snapshotLocked() State {
	items := make([]string, len(s.state.Items))
	copy(items, s.state.Items)
	snapshot := s.state
	snapshot.Items = items
	return snapshot
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.state.IsLoading = loading
	s.mu.Unlock()
}

func (s *Store) replaceItems(items []string) {
	if items == nil {
		items = []string{}
	}
	s.mu.Lock()
	s.state.Items = items
	s.mu.Unlock()
}

// persist writes the saved set to the key matching the current session.
// Writes are suppressed while a load is in flight.
func (s *Store) persist(ctx context.Context, snapshot State) {
	if snapshot.IsLoading {
		return
	}

	payload, err := json.Marshal(snapshot.Items)
	if err != nil {
		s.logg.Error(ctx, "encoding wishlist for persistence", err)
		return
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "reading auth token for wishlist save")
	}

	key := storage.KeyWishlist
	if userID := auth.UserID(token); userID != "" {
		key = storage.UserWishlistKey(userID)
	}
	if err := s.storage.Set(ctx, key, payload); err != nil {
		s.logg.Error(ctx, "saving wishlist", err)
		s.metrics.IncSyncFailure(syncLabel)
		return
	}
	s.metrics.IncSyncSuccess(syncLabel)
}

func (s *Store) loadKey(ctx context.Context, key string) ([]string, bool) {
	value, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logg.Error(ctx, "reading wishlist from storage", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var items []string
	if err := json.Unmarshal(value, &items); err != nil {
		s.logg.Error(ctx, "decoding stored wishlist", err)
		return nil, false
	}
	return items, true
}
