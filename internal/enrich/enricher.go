package enrich

import (
	"context"
	"log"
	"time"

	"lp-radar/internal/domain"
	"lp-radar/internal/filter"
	"lp-radar/internal/observability"
)

// Enricher assembles the market context the filter needs for one
// event. Every lookup is best-effort: an unreachable API leaves the
// corresponding fields unknown.
type Enricher struct {
	market MarketClient
	price  PriceClient
	logger *log.Logger
}

// NewEnricher creates an enricher. market may be nil to run without
// market lookups (replay, tests).
func NewEnricher(market MarketClient, price PriceClient, logger *log.Logger) *Enricher {
	if price == nil {
		price = StaticPriceClient(fallbackSolPriceUSD)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Enricher{market: market, price: price, logger: logger}
}

// For builds the enrichment for an event. Pair age is measured
// against the event's block time so replays see the same age the
// live run did.
func (e *Enricher) For(ctx context.Context, event *domain.LiquidityEvent) filter.Enrichment {
	enr := filter.Enrichment{
		SolPriceUSD: e.price.SolPriceUSD(ctx),
	}

	if e.market == nil {
		return enr
	}

	pair, err := e.market.PairByAddress(ctx, event.Pool)
	if err != nil {
		observability.RecordEnrichmentFailure()
		e.logger.Printf("pair lookup for pool %s failed: %v", event.Pool, err)
	}
	if pair == nil && event.BaseMint != "" {
		pair, err = e.market.PairByToken(ctx, event.BaseMint)
		if err != nil {
			observability.RecordEnrichmentFailure()
			e.logger.Printf("pair lookup for mint %s failed: %v", event.BaseMint, err)
		}
	}
	if pair == nil {
		return enr
	}

	enr.BaseSymbol = pair.BaseSymbol

	if pair.PairCreatedAt > 0 && event.ObservedAt >= pair.PairCreatedAt {
		enr.PairAge = time.Duration(event.ObservedAt-pair.PairCreatedAt) * time.Millisecond
		enr.PairAgeKnown = true
	}

	if pair.MarketCapUSD > 0 {
		enr.MarketCapUSD = pair.MarketCapUSD
		enr.MarketCapUSDKnown = true
	}

	if pair.LiquiditySol > 0 {
		enr.BaselineSol = baselineBefore(pair.LiquiditySol, event)
		enr.BaselineSolKnown = true
	}

	return enr
}

// baselineBefore backs the event's own contribution out of the
// reported liquidity, since the snapshot already includes it.
func baselineBefore(liquiditySol float64, event *domain.LiquidityEvent) float64 {
	baseline := liquiditySol - event.SolAmount()
	if baseline < 0 {
		return 0
	}
	return baseline
}
