package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopwave/mobile-core/pkg/storage"
)

// TokenStore persists the bearer token in device storage under the shared
// auth-token key.
type TokenStore struct {
	store storage.Store
}

func NewTokenStore(store storage.Store) (*TokenStore, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	return &TokenStore{store: store}, nil
}

// Token returns the stored bearer token, or empty when logged out.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	value, ok, err := t.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return string(value), nil
}

func (t *TokenStore) Save(ctx context.Context, token string) error {
	return t.store.Set(ctx, storage.KeyAuthToken, []byte(token))
}

func (t *TokenStore) Clear(ctx context.Context) error {
	return t.store.Remove(ctx, storage.KeyAuthToken)
}

// UserID extracts the userId claim from a bearer token without verifying the
// signature. The id is only used to namespace device storage keys; it is not
// an authentication check.
func UserID(token string) string {
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	userID, _ := claims["userId"].(string)
	return userID
}
