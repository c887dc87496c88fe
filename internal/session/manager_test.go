package session

import (
	"context"
	"errors"
	"testing"

	"github.com/shopwave/mobile-core/pkg/api"
	"github.com/shopwave/mobile-core/pkg/auth"
	pkgerrors "github.com/shopwave/mobile-core/pkg/errors"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/storage"
	"github.com/shopwave/mobile-core/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	verifyUser  *types.User
	verifyErr   error
	verifyCalls int
	loginUser   *types.User
	loginToken  string
	loginErr    error
	signupErr   error
	logoutErr   error
	signupReq   api.SignupRequest
}

func (s *stubRemote) VerifySession(ctx context.Context) (*types.User, error) {
	s.verifyCalls++
	return s.verifyUser, s.verifyErr
}

func (s *stubRemote) Login(ctx context.Context, req api.LoginRequest) (*types.User, string, error) {
	return s.loginUser, s.loginToken, s.loginErr
}

func (s *stubRemote) Signup(ctx context.Context, req api.SignupRequest) error {
	s.signupReq = req
	return s.signupErr
}

func (s *stubRemote) Logout(ctx context.Context) error {
	return s.logoutErr
}

func newTestManager(t *testing.T, remote *stubRemote) (*Manager, *auth.TokenStore) {
	t.Helper()
	tokens, err := auth.NewTokenStore(storage.NewMemory())
	require.NoError(t, err)
	m, err := NewManager(ManagerParams{
		Remote: remote,
		Tokens: tokens,
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	})
	require.NoError(t, err)
	return m, tokens
}

func TestCheckAuthWithoutTokenSkipsRemote(t *testing.T) {
	remote := &stubRemote{verifyErr: errors.New("should not be called")}
	m, _ := newTestManager(t, remote)

	require.NoError(t, m.CheckAuth(context.Background()))
	require.False(t, m.IsAuthenticated())
	require.Zero(t, remote.verifyCalls)
}

func TestCheckAuthVerifiesStoredToken(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{verifyUser: &types.User{ID: "u-1", Username: "asha"}}
	m, tokens := newTestManager(t, remote)
	require.NoError(t, tokens.Save(ctx, "tok"))

	require.NoError(t, m.CheckAuth(ctx))
	require.True(t, m.IsAuthenticated())
	require.Equal(t, "asha", m.User().Username)
}

func TestCheckAuthUnauthorizedDemotesQuietly(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{verifyErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired")}
	m, tokens := newTestManager(t, remote)
	require.NoError(t, tokens.Save(ctx, "stale"))

	require.NoError(t, m.CheckAuth(ctx), "a rejected session is a logout, not an error")
	require.False(t, m.IsAuthenticated())
}

func TestCheckAuthTransportErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{verifyErr: pkgerrors.New(pkgerrors.CodeTransport, "network down")}
	m, tokens := newTestManager(t, remote)
	require.NoError(t, tokens.Save(ctx, "tok"))

	require.Error(t, m.CheckAuth(ctx))
	require.False(t, m.IsAuthenticated())
}

func TestLoginStoresToken(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{loginUser: &types.User{ID: "u-1"}, loginToken: "fresh-token"}
	m, tokens := newTestManager(t, remote)

	user, err := m.Login(ctx, "asha", "secret")
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.True(t, m.IsAuthenticated())

	stored, err := tokens.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, "fresh-token", stored)
}

func TestLoginFailureLeavesSessionLoggedOut(t *testing.T) {
	remote := &stubRemote{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "bad credentials")}
	m, tokens := newTestManager(t, remote)

	_, err := m.Login(context.Background(), "asha", "wrong")
	require.Error(t, err)
	require.False(t, m.IsAuthenticated())

	stored, _ := tokens.Token(context.Background())
	require.Empty(t, stored)
}

func TestSignupSendsPasswordConfirmation(t *testing.T) {
	remote := &stubRemote{}
	m, _ := newTestManager(t, remote)

	require.NoError(t, m.Signup(context.Background(), "asha", "asha@example.com", "secret"))
	require.Equal(t, "secret", remote.signupReq.Password)
	require.Equal(t, "secret", remote.signupReq.ConfirmPassword)
}

func TestLogoutClearsTokenEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	remote := &stubRemote{
		loginUser:  &types.User{ID: "u-1"},
		loginToken: "tok",
		logoutErr:  errors.New("server unreachable"),
	}
	m, tokens := newTestManager(t, remote)
	_, err := m.Login(ctx, "asha", "secret")
	require.NoError(t, err)

	require.Error(t, m.Logout(ctx))
	require.False(t, m.IsAuthenticated())

	stored, _ := tokens.Token(ctx)
	require.Empty(t, stored, "local token must be dropped despite the remote failure")
}
