// Package api is the single HTTP entry point to the commerce backend. Every
// request carries the stored bearer token when one exists; a 401 response
// clears it so the next auth check demotes the session. Calls are single
// attempt: no retry, no backoff, no deduplication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopwave/mobile-core/pkg/auth"
	"github.com/shopwave/mobile-core/pkg/config"
	pkgerrors "github.com/shopwave/mobile-core/pkg/errors"
	"github.com/shopwave/mobile-core/pkg/logger"
	"github.com/shopwave/mobile-core/pkg/metrics"
)

// Params groups dependencies for the API client.
type Params struct {
	Config  config.APIConfig
	Tokens  *auth.TokenStore
	Logger  *logger.Logger
	Metrics *metrics.ClientMetrics
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  *auth.TokenStore
	logg    *logger.Logger
	metrics *metrics.ClientMetrics
}

func New(params Params) (*Client, error) {
	if params.Config.BaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api base url is required")
	}
	if _, err := url.Parse(params.Config.BaseURL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid api base url")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token store is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	timeout := params.Config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(params.Config.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  params.Tokens,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx = c.logg.WithRequestID(ctx, uuid.NewString())

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "reading auth token")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveRequest(path, method, time.Since(start))
	if err != nil {
		c.metrics.IncRequestFailure(path)
		return pkgerrors.Wrap(pkgerrors.CodeTransport, err, fmt.Sprintf("%s %s failed", method, path))
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		// Token expired or invalid; drop it so the session demotes itself.
		if clearErr := c.tokens.Clear(ctx); clearErr != nil {
			c.logg.Error(ctx, "clearing auth token after 401", clearErr)
		} else {
			c.logg.Warn(ctx, "auth token cleared after 401 response")
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding response body")
		}
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, method, path string) error {
	message := fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)
	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		message = envelope.Error
	}
	return pkgerrors.New(pkgerrors.CodeForStatus(resp.StatusCode), message)
}

// remoteError converts an ok=false envelope into a coded error.
func remoteError(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return pkgerrors.New(pkgerrors.CodeRemote, message)
}
