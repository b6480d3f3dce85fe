package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
)

// DefaultCacheTTL is used when no positive TTL is configured.
const DefaultCacheTTL = 30 * time.Second

// Doer executes an HTTP request. Satisfied by *httpclient.Client and
// *httpclient.CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Verdict is the outcome of introspecting a token. An inactive verdict carries
// no identity claims.
type Verdict struct {
	Active   bool   `json:"active"`
	Subject  string `json:"sub"`
	Role     string `json:"role"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Exp      int64  `json:"exp"`
	Iat      int64  `json:"iat"`
}

// Inactive is the verdict for tokens the authority does not vouch for.
var Inactive = Verdict{Active: false}

type cacheEntry struct {
	verdict   Verdict
	expiresAt time.Time
}

// IntrospectionConfig configures the introspection client.
type IntrospectionConfig struct {
	// URL is the token introspection endpoint of the auth authority.
	URL string

	// CacheTTL bounds how long a verdict (active or inactive) is served from
	// cache. Zero or negative falls back to DefaultCacheTTL.
	CacheTTL time.Duration
}

// IntrospectionClient resolves opaque bearer tokens against a remote auth
// authority and caches verdicts in memory. Both active and inactive verdicts
// are cached for the same TTL; transport failures are never cached.
type IntrospectionClient struct {
	url    string
	client Doer
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry

	nowFunc   func() time.Time // injectable clock for testing
	done      chan struct{}
	closeOnce sync.Once
}

// NewIntrospectionClient creates a client and starts its background sweeper.
// Callers must Close the client when done to stop the sweeper.
func NewIntrospectionClient(cfg IntrospectionConfig, client Doer, logger *slog.Logger) *IntrospectionClient {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c := &IntrospectionClient{
		url:     cfg.URL,
		client:  client,
		ttl:     ttl,
		logger:  logger,
		cache:   make(map[string]cacheEntry),
		nowFunc: time.Now,
		done:    make(chan struct{}),
	}

	go c.sweepLoop()

	return c
}

// Introspect resolves the verdict for a bearer token. The empty token is
// inactive without any network round trip. Cached verdicts are served until
// their TTL elapses. A non-200 authority response yields an inactive verdict
// that is cached like any other; a transport failure is reported as an
// upstream error and nothing is cached.
func (c *IntrospectionClient) Introspect(ctx context.Context, token string) (Verdict, error) {
	if token == "" {
		return Inactive, nil
	}

	if v, ok := c.lookup(token); ok {
		return v, nil
	}

	verdict, err := c.fetch(ctx, token)
	if err != nil {
		return Inactive, err
	}

	c.store(token, verdict)
	return verdict, nil
}

func (c *IntrospectionClient) lookup(token string) (Verdict, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[token]
	if !ok || c.nowFunc().After(entry.expiresAt) {
		return Inactive, false
	}
	return entry.verdict, true
}

func (c *IntrospectionClient) store(token string, v Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[token] = cacheEntry{verdict: v, expiresAt: c.nowFunc().Add(c.ttl)}
}

func (c *IntrospectionClient) fetch(ctx context.Context, token string) (Verdict, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return Inactive, fmt.Errorf("marshal introspection request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Inactive, fmt.Errorf("create introspection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "token introspection unreachable",
			slog.String("error", err.Error()),
		)
		return Inactive, apperrors.Upstream("auth", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "token introspection rejected",
			slog.Int("status", resp.StatusCode),
		)
		return Inactive, nil
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return Inactive, apperrors.Upstream("auth", fmt.Errorf("decode introspection response: %w", err))
	}

	if !verdict.Active {
		// Inactive tokens carry no claims regardless of what the authority sent.
		return Inactive, nil
	}

	return verdict, nil
}

// sweepLoop periodically evicts expired cache entries so tokens that are never
// seen again do not pin memory.
func (c *IntrospectionClient) sweepLoop() {
	interval := c.ttl
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *IntrospectionClient) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.nowFunc()
	for token, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, token)
		}
	}
}

// size returns the number of cached verdicts (used in tests).
func (c *IntrospectionClient) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close stops the background sweeper and drops all cached verdicts. Safe to
// call more than once.
func (c *IntrospectionClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		c.cache = make(map[string]cacheEntry)
		c.mu.Unlock()
	})
}
