package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// Default price API endpoints.
const (
	JupiterPriceEndpoint   = "https://price.jup.ag/v6"
	CoinGeckoPriceEndpoint = "https://api.coingecko.com/api/v3"
)

const (
	priceRequestTimeout = 5 * time.Second
	priceCacheTTL       = time.Minute

	// fallbackSolPriceUSD is used when both price sources are down and
	// no cached value exists. USD thresholds degrade gracefully with a
	// rough price rather than turning off entirely.
	fallbackSolPriceUSD = 200.0
)

// PriceClient resolves the SOL/USD price.
type PriceClient interface {
	SolPriceUSD(ctx context.Context) float64
}

// PriceOption configures a CachedPriceClient.
type PriceOption func(*CachedPriceClient)

// WithPriceHTTPClient sets a custom HTTP client.
func WithPriceHTTPClient(hc *http.Client) PriceOption {
	return func(c *CachedPriceClient) {
		c.httpClient = hc
	}
}

// WithPriceCacheTTL sets the price cache TTL.
func WithPriceCacheTTL(ttl time.Duration) PriceOption {
	return func(c *CachedPriceClient) {
		c.cacheTTL = ttl
	}
}

// CachedPriceClient fetches the SOL price from Jupiter with a
// CoinGecko fallback, caching the result briefly.
type CachedPriceClient struct {
	jupiterEndpoint   string
	coingeckoEndpoint string
	httpClient        *http.Client
	cacheTTL          time.Duration
	logger            *log.Logger

	mu      sync.Mutex
	price   float64
	fetched time.Time
}

var _ PriceClient = (*CachedPriceClient)(nil)

// NewCachedPriceClient creates a price client. Empty endpoints fall
// back to the public APIs.
func NewCachedPriceClient(jupiterEndpoint, coingeckoEndpoint string, logger *log.Logger, opts ...PriceOption) *CachedPriceClient {
	if jupiterEndpoint == "" {
		jupiterEndpoint = JupiterPriceEndpoint
	}
	if coingeckoEndpoint == "" {
		coingeckoEndpoint = CoinGeckoPriceEndpoint
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &CachedPriceClient{
		jupiterEndpoint:   jupiterEndpoint,
		coingeckoEndpoint: coingeckoEndpoint,
		httpClient:        &http.Client{Timeout: priceRequestTimeout},
		cacheTTL:          priceCacheTTL,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SolPriceUSD returns the current SOL price. Never fails: stale cache
// beats no price, and the static fallback beats nothing at all.
func (c *CachedPriceClient) SolPriceUSD(ctx context.Context) float64 {
	c.mu.Lock()
	if c.price > 0 && time.Since(c.fetched) < c.cacheTTL {
		price := c.price
		c.mu.Unlock()
		return price
	}
	stale := c.price
	c.mu.Unlock()

	if price, err := c.fetchJupiter(ctx); err == nil && price > 0 {
		c.remember(price)
		return price
	} else if err != nil {
		c.logger.Printf("jupiter price lookup failed: %v", err)
	}

	if price, err := c.fetchCoinGecko(ctx); err == nil && price > 0 {
		c.remember(price)
		return price
	} else if err != nil {
		c.logger.Printf("coingecko price lookup failed: %v", err)
	}

	if stale > 0 {
		return stale
	}
	return fallbackSolPriceUSD
}

func (c *CachedPriceClient) remember(price float64) {
	c.mu.Lock()
	c.price = price
	c.fetched = time.Now()
	c.mu.Unlock()
}

func (c *CachedPriceClient) fetchJupiter(ctx context.Context) (float64, error) {
	body, err := c.get(ctx, c.jupiterEndpoint+"/price?ids=SOL")
	if err != nil {
		return 0, err
	}

	var resp struct {
		Data map[string]struct {
			Price float64 `json:"price"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("parse jupiter response: %w", err)
	}
	return resp.Data["SOL"].Price, nil
}

func (c *CachedPriceClient) fetchCoinGecko(ctx context.Context) (float64, error) {
	body, err := c.get(ctx, c.coingeckoEndpoint+"/simple/price?ids=solana&vs_currencies=usd")
	if err != nil {
		return 0, err
	}

	var resp map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("parse coingecko response: %w", err)
	}
	return resp["solana"].USD, nil
}

func (c *CachedPriceClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price request: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// StaticPriceClient returns a fixed price, for tests and offline replay.
type StaticPriceClient float64

var _ PriceClient = (StaticPriceClient)(0)

func (p StaticPriceClient) SolPriceUSD(context.Context) float64 { return float64(p) }
