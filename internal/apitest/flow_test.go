package apitest_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shopwave/mobile-core/internal/apitest"
	"github.com/shopwave/mobile-core/internal/cart"
	"github.com/shopwave/mobile-core/internal/checkout"
	"github.com/shopwave/mobile-core/internal/orders"
	"github.com/shopwave/mobile-core/internal/session"
	"github.com/shopwave/mobile-core/pkg/api"
	"github.com/shopwave/mobile-core/pkg/auth"
	"github.com/shopwave/mobile-core/pkg/config"
	"github.com/shopwave/mobile-core/pkg/enums"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/storage"
	"github.com/shopwave/mobile-core/pkg/types"
	"github.com/stretchr/testify/require"
)

type client struct {
	storage  storage.Store
	tokens   *auth.TokenStore
	session  *session.Manager
	cart     *cart.Store
	orders   *orders.Store
	checkout *checkout.Service
}

// newClient wires a full client stack against the fake backend, the same way
// the app boots.
func newClient(t *testing.T, baseURL string) *client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "flow-test"})
	store := storage.NewMemory()

	tokens, err := auth.NewTokenStore(store)
	require.NoError(t, err)

	apiClient, err := api.New(api.Params{
		Config: config.APIConfig{BaseURL: baseURL, Timeout: 5 * time.Second},
		Tokens: tokens,
		Logger: logg,
	})
	require.NoError(t, err)

	sess, err := session.NewManager(session.ManagerParams{Remote: apiClient, Tokens: tokens, Logger: logg})
	require.NoError(t, err)

	cartStore, err := cart.NewStore(cart.StoreParams{Remote: apiClient, Storage: store, Tokens: tokens, Logger: logg})
	require.NoError(t, err)

	orderStore, err := orders.NewStore(orders.StoreParams{Remote: apiClient, Tokens: tokens, Logger: logg})
	require.NoError(t, err)

	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{Cart: cartStore, Orders: orderStore, Logger: logg})
	require.NoError(t, err)

	return &client{
		storage:  store,
		tokens:   tokens,
		session:  sess,
		cart:     cartStore,
		orders:   orderStore,
		checkout: checkoutSvc,
	}
}

func address() types.DeliveryAddress {
	return types.DeliveryAddress{
		FullName: "Asha Rao",
		Phone:    "9876543210",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560001",
	}
}

func TestLoginCheckoutAndOrderLookup(t *testing.T) {
	ctx := context.Background()
	server := apitest.NewServer()
	defer server.Close()

	c := newClient(t, server.URL())

	_, err := c.session.Login(ctx, "asha", "secret")
	require.NoError(t, err)
	require.True(t, c.session.IsAuthenticated())

	c.cart.AddToCart(ctx, types.Product{ID: "p1", Name: "widget", Price: decimal.NewFromInt(300)}, 2, nil)
	require.Equal(t, 2, c.cart.State().TotalItems)

	order, err := c.checkout.PlaceOrder(ctx, address(), enums.PaymentMethodUPI, "")
	require.NoError(t, err)
	require.NotEmpty(t, order.OrderID)
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.False(t, order.CreatedAt.IsZero(), "wire dates must be normalized")
	require.True(t, decimal.NewFromInt(600).Equal(order.Pricing.Subtotal))
	require.True(t, order.Pricing.DeliveryFee.IsZero(), "600 subtotal ships free")

	require.Empty(t, c.cart.State().Items, "cart clears after a placed order")

	require.NoError(t, c.orders.LoadOrders(ctx))
	require.Len(t, c.orders.State().Orders, 1)

	fetched := c.orders.GetOrderByID(ctx, order.OrderID)
	require.NotNil(t, fetched)
	require.Equal(t, order.OrderID, fetched.OrderID)

	require.Nil(t, c.orders.GetOrderByID(ctx, "ORD-404"), "missing orders resolve to nil, not errors")
}

func TestCartSurvivesRelogin(t *testing.T) {
	ctx := context.Background()
	server := apitest.NewServer()
	defer server.Close()

	first := newClient(t, server.URL())
	_, err := first.session.Login(ctx, "asha", "secret")
	require.NoError(t, err)
	first.cart.AddToCart(ctx, types.Product{ID: "p1", Name: "widget", Price: decimal.NewFromInt(120)}, 3, nil)

	// Fresh device: the remote cart is the source of truth on load.
	second := newClient(t, server.URL())
	_, err = second.session.Login(ctx, "asha", "secret")
	require.NoError(t, err)
	second.cart.Load(ctx)

	state := second.cart.State()
	require.Equal(t, 3, state.TotalItems)
	require.True(t, decimal.NewFromInt(360).Equal(state.TotalPrice))
}

func TestStaleTokenDemotesSessionAndClearsToken(t *testing.T) {
	ctx := context.Background()
	server := apitest.NewServer()
	defer server.Close()

	c := newClient(t, server.URL())
	require.NoError(t, c.tokens.Save(ctx, "never-issued"))

	require.NoError(t, c.session.CheckAuth(ctx))
	require.False(t, c.session.IsAuthenticated())

	stored, err := c.tokens.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, stored, "401 responses clear the stored token")
}

func TestLogoutEndsServerSession(t *testing.T) {
	ctx := context.Background()
	server := apitest.NewServer()
	defer server.Close()

	c := newClient(t, server.URL())
	_, err := c.session.Login(ctx, "asha", "secret")
	require.NoError(t, err)

	require.NoError(t, c.session.Logout(ctx))
	require.False(t, c.session.IsAuthenticated())

	stored, err := c.tokens.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, stored)
}
