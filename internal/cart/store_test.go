package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/storage"
	"github.com/shopwave/mobile-core/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	getItems []types.CartLineItem
	getErr   error
	putErr   error
	putCalls [][]types.CartLineItem
}

func (s *stubRemote) GetCart(ctx context.Context) ([]types.CartLineItem, error) {
	return s.getItems, s.getErr
}

func (s *stubRemote) PutCart(ctx context.Context, items []types.CartLineItem) error {
	s.putCalls = append(s.putCalls, items)
	return s.putErr
}

type stubTokens struct {
	token string
	err   error
}

func (s *stubTokens) Token(ctx context.Context) (string, error) {
	return s.token, s.err
}

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": userID}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func product(id string, price int64, stock int) types.Product {
	return types.Product{ID: id, Name: "product " + id, Price: decimal.NewFromInt(price), Stock: stock}
}

func newTestStore(t *testing.T, remote *stubRemote, store storage.Store, tokens TokenSource) *Store {
	t.Helper()
	if store == nil {
		store = storage.NewMemory()
	}
	s, err := NewStore(StoreParams{
		Remote:  remote,
		Storage: store,
		Tokens:  tokens,
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return s
}

func TestTotalsDerivedFromItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 2, nil)
	s.AddToCart(ctx, product("p2", 250, 5), 1, nil)
	s.AddToCart(ctx, product("p1", 100, 10), 3, map[string]string{"color": "red"})

	state := s.State()
	require.Equal(t, 6, state.TotalItems)
	require.True(t, decimal.NewFromInt(750).Equal(state.TotalPrice), "got %s", state.TotalPrice)
}

func TestAddMergesOnSameProductAndAttributes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	attrs := map[string]string{"size": "M", "color": "blue"}
	s.AddToCart(ctx, product("p1", 100, 10), 2, attrs)
	s.AddToCart(ctx, product("p1", 100, 10), 3, map[string]string{"color": "blue", "size": "M"})

	state := s.State()
	require.Len(t, state.Items, 1)
	require.Equal(t, 5, state.Items[0].Quantity)
	require.Equal(t, 5, state.TotalItems)
}

func TestAddKeepsDistinctAttributeVariants(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 1, map[string]string{"color": "red"})
	s.AddToCart(ctx, product("p1", 100, 10), 1, map[string]string{"color": "blue"})

	require.Len(t, s.State().Items, 2)
}

func TestNilAndEmptyAttributesMerge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 1, nil)
	s.AddToCart(ctx, product("p1", 100, 10), 1, map[string]string{})

	state := s.State()
	require.Len(t, state.Items, 1)
	require.Equal(t, 2, state.Items[0].Quantity)
}

func TestUpdateQuantityZeroRemovesItem(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 2, nil)
	s.UpdateQuantity(ctx, "p1", 0)

	state := s.State()
	require.Empty(t, state.Items)
	require.Zero(t, state.TotalItems)
	require.True(t, state.TotalPrice.IsZero())
}

func TestUpdateQuantityNegativeClampsToZero(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 2, nil)
	s.UpdateQuantity(ctx, "p1", -1)

	require.Empty(t, s.State().Items)
}

func TestRemoveDropsEveryVariantOfProduct(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 1, map[string]string{"color": "red"})
	s.AddToCart(ctx, product("p1", 100, 10), 1, map[string]string{"color": "blue"})
	s.AddToCart(ctx, product("p2", 50, 10), 1, nil)

	s.RemoveFromCart(ctx, "p1")

	state := s.State()
	require.Len(t, state.Items, 1)
	require.Equal(t, "p2", state.Items[0].Product.ID)
}

func TestClearThenAddYieldsSingleItemTotals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, &stubRemote{}, nil, &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 4, nil)
	s.ClearCart(ctx)
	s.AddToCart(ctx, product("p2", 199, 3), 1, nil)

	state := s.State()
	require.Equal(t, 1, state.TotalItems)
	require.True(t, decimal.NewFromInt(199).Equal(state.TotalPrice))
}

func TestLoadPrefersRemoteAndWritesUserBackup(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{getItems: []types.CartLineItem{
		{Product: product("p9", 40, 2), Quantity: 2},
	}}
	store := storage.NewMemory()
	tokens := &stubTokens{token: mintToken(t, "u-1")}
	s := newTestStore(t, remote, store, tokens)

	s.Load(ctx)

	state := s.State()
	require.Len(t, state.Items, 1)
	require.Equal(t, 2, state.TotalItems)
	require.True(t, decimal.NewFromInt(80).Equal(state.TotalPrice))

	_, ok, err := store.Get(ctx, storage.UserCartKey("u-1"))
	require.NoError(t, err)
	require.True(t, ok, "expected user-scoped backup after remote load")
}

func TestLoadFallsBackToUserCopyWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	tokens := &stubTokens{token: mintToken(t, "u-1")}

	seeded := newTestStore(t, &stubRemote{}, store, tokens)
	seeded.AddToCart(ctx, product("p1", 120, 5), 3, nil)

	remote := &stubRemote{getErr: errors.New("network down")}
	s := newTestStore(t, remote, store, tokens)
	s.Load(ctx)

	state := s.State()
	require.Len(t, state.Items, 1)
	require.Equal(t, 3, state.TotalItems)
	require.True(t, decimal.NewFromInt(360).Equal(state.TotalPrice), "totals must be recomputed on load")
}

func TestLoadFallsBackToGuestCopyWithoutToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	guest := newTestStore(t, &stubRemote{}, store, &stubTokens{})
	guest.AddToCart(ctx, product("p7", 60, 9), 2, map[string]string{"size": "L"})

	s := newTestStore(t, &stubRemote{getErr: errors.New("unreachable")}, store, &stubTokens{})
	s.Load(ctx)

	state := s.State()
	require.Len(t, state.Items, 1)
	require.Equal(t, map[string]string{"size": "L"}, state.Items[0].SelectedAttributes)
	require.Equal(t, 2, state.TotalItems)
	require.True(t, decimal.NewFromInt(120).Equal(state.TotalPrice))
}

func TestMutationsSyncRemoteWhenAuthenticated(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{}
	tokens := &stubTokens{token: mintToken(t, "u-1")}
	s := newTestStore(t, remote, storage.NewMemory(), tokens)

	s.AddToCart(ctx, product("p1", 100, 10), 1, nil)
	s.UpdateQuantity(ctx, "p1", 4)

	require.Len(t, remote.putCalls, 2, "every mutation posts the full item list")
	require.Len(t, remote.putCalls[1], 1)
	require.Equal(t, 4, remote.putCalls[1][0].Quantity)
}

func TestFailedRemoteSyncKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{putErr: errors.New("503")}
	tokens := &stubTokens{token: mintToken(t, "u-1")}
	s := newTestStore(t, remote, storage.NewMemory(), tokens)

	s.AddToCart(ctx, product("p1", 100, 10), 2, nil)

	state := s.State()
	require.Equal(t, 2, state.TotalItems, "local state stays authoritative on sync failure")
}

func TestFailedAuthedSyncDoesNotTouchGuestKey(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	remote := &stubRemote{putErr: errors.New("503")}
	tokens := &stubTokens{token: mintToken(t, "u-1")}

	s := newTestStore(t, remote, store, tokens)
	s.AddToCart(ctx, product("p1", 100, 10), 2, nil)

	// The user-scoped copy survives the failed sync.
	_, ok, err := store.Get(ctx, storage.UserCartKey("u-1"))
	require.NoError(t, err)
	require.True(t, ok)

	// The guest key stays untouched, so a logged-out session starts empty
	// instead of resurrecting another user's items.
	_, ok, err = store.Get(ctx, storage.KeyCart)
	require.NoError(t, err)
	require.False(t, ok)

	guest := newTestStore(t, &stubRemote{}, store, &stubTokens{})
	guest.Load(ctx)
	require.Empty(t, guest.State().Items)
}

func TestRefreshReplacesStateWholesale(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{getItems: []types.CartLineItem{
		{Product: product("p2", 10, 1), Quantity: 1},
	}}
	tokens := &stubTokens{token: mintToken(t, "u-1")}
	s := newTestStore(t, remote, storage.NewMemory(), tokens)

	s.AddToCart(ctx, product("p1", 100, 10), 5, nil)
	s.RefreshCart(ctx)

	state := s.State()
	require.Len(t, state.Items, 1)
	require.Equal(t, "p2", state.Items[0].Product.ID)
	require.Equal(t, 1, state.TotalItems)
}

func TestRefreshWithoutTokenIsNoop(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{getItems: []types.CartLineItem{
		{Product: product("p2", 10, 1), Quantity: 1},
	}}
	s := newTestStore(t, remote, storage.NewMemory(), &stubTokens{})

	s.AddToCart(ctx, product("p1", 100, 10), 5, nil)
	s.RefreshCart(ctx)

	require.Equal(t, 5, s.State().TotalItems)
}

func TestStorageRoundTripRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()

	first := newTestStore(t, &stubRemote{}, store, &stubTokens{})
	first.AddToCart(ctx, product("p1", 100, 10), 2, map[string]string{"color": "red"})
	first.AddToCart(ctx, product("p2", 50, 4), 1, nil)

	second := newTestStore(t, &stubRemote{getErr: errors.New("offline")}, store, &stubTokens{})
	second.Load(ctx)

	want := first.State()
	got := second.State()
	require.Equal(t, len(want.Items), len(got.Items))
	for i := range want.Items {
		require.Equal(t, want.Items[i].Product.ID, got.Items[i].Product.ID)
		require.Equal(t, want.Items[i].Quantity, got.Items[i].Quantity)
		require.True(t, want.Items[i].Matches(got.Items[i].Product.ID, got.Items[i].SelectedAttributes))
	}
	require.Equal(t, want.TotalItems, got.TotalItems)
	require.True(t, want.TotalPrice.Equal(got.TotalPrice))
}
