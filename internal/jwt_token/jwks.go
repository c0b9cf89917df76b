package jwttoken

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// JWKSCache holds the verification key set fetched from the identity
// provider's discovery endpoint. The set is fetched lazily on first use;
// concurrent cold-start requests are collapsed into a single fetch via
// singleflight. After population the cache is read-mostly: a background
// refresh re-fetches out-of-band and a failed refresh keeps the previous
// keys rather than dropping them.
type JWKSCache struct {
	url    string
	client *http.Client
	logger *slog.Logger
	group  singleflight.Group

	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

// NewJWKSCache creates a cache for the given JWKS discovery URL.
func NewJWKSCache(url string, logger *slog.Logger) *JWKSCache {
	return &JWKSCache{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Key returns the RSA public key for the given key ID, fetching the key set
// first if the cache is still empty.
func (c *JWKSCache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	populated := c.keys != nil
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	if !populated {
		// One fetch regardless of how many requests arrive cold.
		if _, err, _ := c.group.Do("fetch", func() (any, error) {
			return nil, c.Refresh(ctx)
		}); err != nil {
			return nil, err
		}

		c.mu.RLock()
		key, ok = c.keys[kid]
		c.mu.RUnlock()
		if ok {
			return key, nil
		}
	}

	return nil, fmt.Errorf("no key with id %q in key set", kid)
}

// Refresh fetches the key set and swaps it in. On failure the previously
// cached keys stay in place.
func (c *JWKSCache) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("building jwks request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching jwks: unexpected status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Use string `json:"use"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decoding jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub, err := rsaKeyFromJWK(k.N, k.E)
		if err != nil {
			c.logger.Warn("skipping unparseable jwk", "kid", k.Kid, "error", err)
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("jwks document contained no usable RSA signing keys")
	}

	c.mu.Lock()
	c.keys = keys
	c.mu.Unlock()
	return nil
}

// StartRefresh re-fetches the key set on the given interval until ctx is
// cancelled. It never runs on the request path.
func (c *JWKSCache) StartRefresh(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					c.logger.Warn("jwks refresh failed, keeping cached keys", "error", err)
				}
			}
		}
	}()
}

func rsaKeyFromJWK(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	exponent := 0
	for _, b := range eBytes {
		exponent = exponent<<8 | int(b)
	}
	if exponent == 0 {
		return nil, fmt.Errorf("zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: exponent,
	}, nil
}
