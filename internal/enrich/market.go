// Package enrich gathers best-effort market context for decoded
// events: pair age, market cap, baseline liquidity, and the SOL/USD
// price. Failures degrade individual fields rather than blocking the
// pipeline.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// DexScreenerEndpoint is the default market data API base URL.
const DexScreenerEndpoint = "https://api.dexscreener.com"

const (
	marketRequestTimeout = 10 * time.Second
	pairCacheTTL         = 5 * time.Minute
)

// PairInfo is the market snapshot for one trading pair.
type PairInfo struct {
	PairAddress   string
	BaseMint      string
	BaseSymbol    string
	QuoteSymbol   string
	LiquidityUSD  float64
	LiquiditySol  float64 // quote-side liquidity in SOL
	MarketCapUSD  float64
	PairCreatedAt int64 // Unix ms
	PriceUSD      float64
	Volume24hUSD  float64
}

// MarketClient looks up trading pair snapshots.
type MarketClient interface {
	// PairByAddress fetches the snapshot for a pool address.
	// Returns (nil, nil) when the pair is unknown.
	PairByAddress(ctx context.Context, pool string) (*PairInfo, error)

	// PairByToken fetches the most liquid SOL-quoted pair for a mint.
	// Returns (nil, nil) when no such pair exists.
	PairByToken(ctx context.Context, mint string) (*PairInfo, error)
}

// MarketOption configures a DexScreenerClient.
type MarketOption func(*DexScreenerClient)

// WithMarketHTTPClient sets a custom HTTP client.
func WithMarketHTTPClient(hc *http.Client) MarketOption {
	return func(c *DexScreenerClient) {
		c.httpClient = hc
	}
}

// WithMarketCacheTTL sets the pair snapshot cache TTL.
func WithMarketCacheTTL(ttl time.Duration) MarketOption {
	return func(c *DexScreenerClient) {
		c.cacheTTL = ttl
	}
}

// DexScreenerClient implements MarketClient against the DexScreener
// REST API. Responses are cached briefly; the API is rate limited and
// one pool tends to be queried in bursts.
type DexScreenerClient struct {
	endpoint   string
	httpClient *http.Client
	cacheTTL   time.Duration

	mu    sync.Mutex
	cache map[string]cachedPair
}

type cachedPair struct {
	pair    *PairInfo
	fetched time.Time
}

var _ MarketClient = (*DexScreenerClient)(nil)

// NewDexScreenerClient creates a market client for the given API base URL.
func NewDexScreenerClient(endpoint string, opts ...MarketOption) *DexScreenerClient {
	if endpoint == "" {
		endpoint = DexScreenerEndpoint
	}
	c := &DexScreenerClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: marketRequestTimeout},
		cacheTTL:   pairCacheTTL,
		cache:      make(map[string]cachedPair),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// dsPair mirrors the DexScreener pair document.
type dsPair struct {
	ChainID     string `json:"chainId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	QuoteToken struct {
		Symbol string `json:"symbol"`
	} `json:"quoteToken"`
	Liquidity struct {
		USD   float64 `json:"usd"`
		Quote float64 `json:"quote"`
	} `json:"liquidity"`
	MarketCap     float64 `json:"marketCap"`
	FDV           float64 `json:"fdv"`
	PairCreatedAt int64   `json:"pairCreatedAt"`
	PriceUSD      string  `json:"priceUsd"`
	Volume        struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
}

type dsResponse struct {
	Pair  *dsPair  `json:"pair"`
	Pairs []dsPair `json:"pairs"`
}

func (c *DexScreenerClient) PairByAddress(ctx context.Context, pool string) (*PairInfo, error) {
	if cached, ok := c.cached("pool:" + pool); ok {
		return cached, nil
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/latest/dex/pairs/solana/%s", c.endpoint, pool))
	if err != nil {
		return nil, err
	}

	pair := resp.Pair
	if pair == nil && len(resp.Pairs) > 0 {
		pair = &resp.Pairs[0]
	}
	if pair == nil {
		c.store("pool:"+pool, nil)
		return nil, nil
	}

	info := convertPair(pair)
	c.store("pool:"+pool, info)
	return info, nil
}

func (c *DexScreenerClient) PairByToken(ctx context.Context, mint string) (*PairInfo, error) {
	if cached, ok := c.cached("mint:" + mint); ok {
		return cached, nil
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s/latest/dex/tokens/%s", c.endpoint, mint))
	if err != nil {
		return nil, err
	}

	// Pick the most liquid SOL-quoted Solana pair.
	var best *dsPair
	for i := range resp.Pairs {
		p := &resp.Pairs[i]
		if p.ChainID != "solana" {
			continue
		}
		if p.QuoteToken.Symbol != "SOL" && p.QuoteToken.Symbol != "WSOL" {
			continue
		}
		if best == nil || p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	if best == nil {
		c.store("mint:"+mint, nil)
		return nil, nil
	}

	info := convertPair(best)
	c.store("mint:"+mint, info)
	return info, nil
}

func (c *DexScreenerClient) get(ctx context.Context, url string) (*dsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market request: unexpected status %d", httpResp.StatusCode)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read market response: %w", err)
	}

	var resp dsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse market response: %w", err)
	}
	return &resp, nil
}

func (c *DexScreenerClient) cached(key string) (*PairInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache[key]
	if !ok || time.Since(entry.fetched) > c.cacheTTL {
		return nil, false
	}
	if entry.pair == nil {
		return nil, true
	}
	pairCopy := *entry.pair
	return &pairCopy, true
}

func (c *DexScreenerClient) store(key string, pair *PairInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cachedPair{pair: pair, fetched: time.Now()}
}

func convertPair(p *dsPair) *PairInfo {
	mcap := p.MarketCap
	if mcap == 0 {
		mcap = p.FDV
	}

	var priceUSD float64
	fmt.Sscanf(p.PriceUSD, "%f", &priceUSD)

	return &PairInfo{
		PairAddress:   p.PairAddress,
		BaseMint:      p.BaseToken.Address,
		BaseSymbol:    p.BaseToken.Symbol,
		QuoteSymbol:   p.QuoteToken.Symbol,
		LiquidityUSD:  p.Liquidity.USD,
		LiquiditySol:  p.Liquidity.Quote,
		MarketCapUSD:  mcap,
		PairCreatedAt: p.PairCreatedAt,
		PriceUSD:      priceUSD,
		Volume24hUSD:  p.Volume.H24,
	}
}
