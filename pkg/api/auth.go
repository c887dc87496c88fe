package api

import (
	"context"

	"github.com/shopwave/mobile-core/pkg/types"
)

type authEnvelope struct {
	OK    bool        `json:"ok"`
	User  *types.User `json:"user,omitempty"`
	Token string      `json:"token,omitempty"`
	Error string      `json:"error,omitempty"`
}

// LoginRequest matches POST /api/auth/login.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// SignupRequest matches POST /api/auth/signup.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// VerifySession checks the stored token against the backend and returns the
// authenticated user.
func (c *Client) VerifySession(ctx context.Context) (*types.User, error) {
	var env authEnvelope
	if err := c.get(ctx, "/api/auth/verify", &env); err != nil {
		return nil, err
	}
	if !env.OK || env.User == nil {
		return nil, remoteError(env.Error, "session verification failed")
	}
	return env.User, nil
}

// Login exchanges credentials for a user and a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*types.User, string, error) {
	var env authEnvelope
	if err := c.post(ctx, "/api/auth/login", req, &env); err != nil {
		return nil, "", err
	}
	if !env.OK || env.User == nil || env.Token == "" {
		return nil, "", remoteError(env.Error, "login failed")
	}
	return env.User, env.Token, nil
}

// Signup registers a new account. The caller logs in separately afterwards.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	var env authEnvelope
	if err := c.post(ctx, "/api/auth/signup", req, &env); err != nil {
		return err
	}
	if !env.OK {
		return remoteError(env.Error, "signup failed")
	}
	return nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	var env authEnvelope
	if err := c.post(ctx, "/api/auth/logout", nil, &env); err != nil {
		return err
	}
	if !env.OK {
		return remoteError(env.Error, "logout failed")
	}
	return nil
}
