// Package apiclient talks to the upstream WebHub REST API on behalf of one
// browser client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/webhub/admin-console/internal/api/metrics"
	"github.com/webhub/admin-console/internal/core/domain"
	"github.com/webhub/admin-console/internal/core/ports"
)

const maxErrorBody = 64 << 10

// APIError is a non-2xx upstream response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.Status)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// UserMessage is the message the upstream API meant for the user.
func (e *APIError) UserMessage() string { return e.Message }

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.http = c }
}

// WithRejectHook registers fn to run after an upstream 401 cleared the store.
func WithRejectHook(fn func()) Option {
	return func(g *Gateway) { g.onRejected = fn }
}

// WithLogger sets the gateway logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) { g.log = log }
}

// Gateway attaches the stored bearer token to every upstream call and turns
// an authentication failure into a hard session reset.
type Gateway struct {
	baseURL    string
	http       *http.Client
	store      ports.CredentialStore
	onRejected func()
	log        zerolog.Logger
}

// NewGateway returns a Gateway for baseURL reading tokens from store.
func NewGateway(baseURL string, store ports.CredentialStore, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do sends a JSON request and decodes a 2xx body into out (when non-nil).
// A 401 clears the credential store, fires the reject hook and returns an
// error wrapping domain.ErrSessionRejected.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	return g.send(ctx, method, path, body, out, true)
}

// send is Do with the reset on 401 made optional; the authentication
// endpoints answer 401 for bad credentials, which must not end a session.
func (g *Gateway) send(ctx context.Context, method, path string, body, out any, resetOn401 bool) error {
	token, err := g.store.Token(ctx)
	if err != nil {
		g.log.Warn().Err(err).Msg("could not read token, sending request unauthenticated")
	}
	return g.sendAs(ctx, token, method, path, body, out, resetOn401)
}

// sendAs is send with an explicit bearer token; empty means unauthenticated.
func (g *Gateway) sendAs(ctx context.Context, token, method, path string, body, out any, resetOn401 bool) error {
	req, err := g.newRequest(ctx, method, path, body, token)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusUnauthorized && resetOn401 {
		g.reject(ctx, token, method, path)
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrSessionRejected)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (g *Gateway) newRequest(ctx context.Context, method, path string, body any, token string) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rdr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// reject clears the store and hands control to the reject hook. It runs even
// if the request context is already cancelled. A 401 for a token the store no
// longer holds is stale: a newer login replaced it, so nothing is cleared.
func (g *Gateway) reject(ctx context.Context, sent, method, path string) {
	ctx = context.WithoutCancel(ctx)
	if cur, err := g.store.Token(ctx); err == nil && cur != sent {
		g.log.Debug().Str("method", method).Str("path", path).Msg("stale rejection ignored")
		return
	}

	metrics.GatewayRejectionsTotal.Inc()
	g.log.Info().Str("method", method).Str("path", path).Msg("upstream rejected session")

	if err := g.store.Clear(ctx); err != nil {
		g.log.Error().Err(err).Msg("failed to clear credential store after rejection")
	}
	if g.onRejected != nil {
		g.onRejected()
	}
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
