// Package session owns the authenticated-user lifecycle: verifying a stored
// token on startup, logging in and out, and exposing the current user to the
// rest of the client.
package session

import (
	"context"
	"sync"

	"github.com/shopwave/mobile-core/pkg/api"
	"github.com/shopwave/mobile-core/pkg/auth"
	pkgerrors "github.com/shopwave/mobile-core/pkg/errors"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/types"
)

// RemoteAuth is the slice of the API client the session manager needs.
type RemoteAuth interface {
	VerifySession(ctx context.Context) (*types.User, error)
	Login(ctx context.Context, req api.LoginRequest) (*types.User, string, error)
	Signup(ctx context.Context, req api.SignupRequest) error
	Logout(ctx context.Context) error
}

// ManagerParams groups dependencies for the session manager.
type ManagerParams struct {
	Remote RemoteAuth
	Tokens *auth.TokenStore
	Logger *logger.Logger
}

type Manager struct {
	mu     sync.Mutex
	user   *types.User
	remote RemoteAuth
	tokens *auth.TokenStore
	logg   *logger.Logger
}

func NewManager(params ManagerParams) (*Manager, error) {
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote auth is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Manager{
		remote: params.Remote,
		tokens: params.Tokens,
		logg:   params.Logger,
	}, nil
}

// User returns the verified user, or nil when logged out.
func (m *Manager) User() *types.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

func (m *Manager) IsAuthenticated() bool {
	return m.User() != nil
}

// CheckAuth verifies the stored token against the backend. With no stored
// token the session is simply logged out, not an error. A failed verification
// demotes the session; the token itself is cleared by the API client on 401.
func (m *Manager) CheckAuth(ctx context.Context) error {
	token, err := m.tokens.Token(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading stored token")
	}
	if token == "" {
		m.setUser(nil)
		return nil
	}

	user, err := m.remote.VerifySession(ctx)
	if err != nil {
		m.setUser(nil)
		if pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
			m.logg.Warn(ctx, "stored session rejected, logged out")
			return nil
		}
		return err
	}
	m.setUser(user)
	m.logg.Info(m.logg.WithUserID(ctx, user.ID), "session verified")
	return nil
}

// Login authenticates and stores the returned token so subsequent requests
// carry it.
func (m *Manager) Login(ctx context.Context, usernameOrEmail, password string) (*types.User, error) {
	user, token, err := m.remote.Login(ctx, api.LoginRequest{
		UsernameOrEmail: usernameOrEmail,
		Password:        password,
	})
	if err != nil {
		return nil, err
	}
	if err := m.tokens.Save(ctx, token); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting auth token")
	}
	m.setUser(user)
	m.logg.Info(m.logg.WithUserID(ctx, user.ID), "logged in")
	return user, nil
}

// Signup registers the account. The password is sent twice because the
// backend validates the confirmation server-side.
func (m *Manager) Signup(ctx context.Context, username, email, password string) error {
	return m.remote.Signup(ctx, api.SignupRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
}

// Logout clears the session. The local token is dropped even when the
// server-side logout call fails, so the device never stays half logged in.
func (m *Manager) Logout(ctx context.Context) error {
	remoteErr := m.remote.Logout(ctx)
	if remoteErr != nil {
		m.logg.Error(ctx, "remote logout failed, clearing local session anyway", remoteErr)
	}
	if err := m.tokens.Clear(ctx); err != nil {
		m.logg.Error(ctx, "clearing auth token", err)
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing auth token")
	}
	m.setUser(nil)
	return remoteErr
}

func (m *Manager) setUser(user *types.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = user
}
