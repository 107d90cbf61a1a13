package ingest

import (
	"context"
	"errors"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"lp-radar/internal/alerting"
	"lp-radar/internal/decode"
	"lp-radar/internal/dedupe"
	"lp-radar/internal/domain"
	"lp-radar/internal/enrich"
	"lp-radar/internal/filter"
	"lp-radar/internal/idhash"
	"lp-radar/internal/observability"
	"lp-radar/internal/signals"
	"lp-radar/internal/solana"
	"lp-radar/internal/storage"
)

// LogSubscriber is the slice of the websocket client the runner needs.
type LogSubscriber interface {
	SubscribeLogs(ctx context.Context, filter solana.LogsFilter) (<-chan solana.LogNotification, error)
}

const (
	defaultWorkers = 4
	defaultShards  = 8

	// minSpikeMultiplier is the loosest spike the pipeline records as
	// an event. The active profile rejects weaker spikes later, but
	// recording them keeps the signal window informed.
	minSpikeMultiplier = 1.5

	shardQueueSize = 1024
)

// RunnerConfig holds the tunables of the live pipeline.
type RunnerConfig struct {
	// Program is the AMM program ID whose logs are watched.
	Program string
	// Workers resolve and decode notifications concurrently.
	Workers int
	// Shards are per-pool serial lanes; a pool's events are always
	// evaluated in arrival order.
	Shards int
}

// Runner wires the full live path from websocket notification to
// recorded alert.
type Runner struct {
	cfg      RunnerConfig
	ws       LogSubscriber
	resolver *Resolver
	deduper  dedupe.Deduper
	windows  *signals.Tracker
	volume   *signals.VolumeTracker
	enricher *enrich.Enricher
	engine   *filter.Engine
	boundary *alerting.Boundary
	events   storage.LiquidityEventStore
	archive  storage.EventArchive
	logger   *log.Logger

	shards []chan poolWork
}

// poolWork is one unit handed to a pool shard: either a finished
// liquidity event or a raw swap sample for the volume tracker.
type poolWork struct {
	event *domain.LiquidityEvent
	swap  *swapSample
}

type swapSample struct {
	instr      decode.DecodedInstruction
	deltas     decode.VaultDeltas
	signature  string
	slot       int64
	observedAt int64
}

// NewRunner assembles the pipeline. archive may be nil to skip the
// analytics sink.
func NewRunner(
	cfg RunnerConfig,
	ws LogSubscriber,
	resolver *Resolver,
	deduper dedupe.Deduper,
	windows *signals.Tracker,
	volume *signals.VolumeTracker,
	enricher *enrich.Enricher,
	engine *filter.Engine,
	boundary *alerting.Boundary,
	events storage.LiquidityEventStore,
	archive storage.EventArchive,
	logger *log.Logger,
) *Runner {
	if cfg.Program == "" {
		cfg.Program = decode.RaydiumAMMV4
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.Shards <= 0 {
		cfg.Shards = defaultShards
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		cfg:      cfg,
		ws:       ws,
		resolver: resolver,
		deduper:  deduper,
		windows:  windows,
		volume:   volume,
		enricher: enricher,
		engine:   engine,
		boundary: boundary,
		events:   events,
		archive:  archive,
		logger:   logger,
	}
}

// Run subscribes and processes notifications until ctx is cancelled,
// then drains the in-flight work before returning.
func (r *Runner) Run(ctx context.Context) error {
	notifications, err := r.ws.SubscribeLogs(ctx, solana.LogsFilter{
		Mentions: []string{r.cfg.Program},
	})
	if err != nil {
		return err
	}

	r.shards = make([]chan poolWork, r.cfg.Shards)
	var shardWg sync.WaitGroup
	for i := range r.shards {
		r.shards[i] = make(chan poolWork, shardQueueSize)
		shardWg.Add(1)
		go func(ch chan poolWork) {
			defer shardWg.Done()
			for work := range ch {
				r.processPoolWork(work)
			}
		}(r.shards[i])
	}

	var workerWg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case notif, ok := <-notifications:
					if !ok {
						return
					}
					r.handleNotification(ctx, notif)
				}
			}
		}()
	}

	r.logger.Printf("pipeline running: program=%s workers=%d shards=%d",
		r.cfg.Program, r.cfg.Workers, r.cfg.Shards)

	<-ctx.Done()
	workerWg.Wait()
	for _, ch := range r.shards {
		close(ch)
	}
	shardWg.Wait()

	if r.archive != nil {
		if err := r.archive.Flush(context.Background()); err != nil {
			r.logger.Printf("flush archive on shutdown: %v", err)
		}
	}

	r.logger.Printf("pipeline drained")
	return ctx.Err()
}

// handleNotification runs the stateless stages: dedup, resolve, decode.
func (r *Runner) handleNotification(ctx context.Context, notif solana.LogNotification) {
	observability.RecordNotification()

	// Failed transactions never move balances.
	if notif.Err != nil {
		return
	}

	seen, err := r.deduper.Seen(ctx, notif.Signature)
	if err != nil {
		// Fail open: a degraded dedup backend must not stall the feed.
		r.logger.Printf("dedup check for %s: %v", notif.Signature, err)
	} else if seen {
		observability.RecordDuplicate()
		return
	}

	resolveStart := time.Now()
	tx, err := r.resolver.Resolve(ctx, notif.Signature)
	if err != nil {
		var resErr *ResolutionError
		if errors.As(err, &resErr) {
			observability.RecordResolutionFailure(resErr.Reason)
		}
		r.logger.Printf("resolve %s: %v", notif.Signature, err)
		return
	}
	observability.DefaultMetrics.ResolutionLatency.Observe(time.Since(resolveStart).Seconds())
	if !tx.Succeeded {
		return
	}

	instr := decode.DecodeTransaction(tx)
	if instr.Kind == decode.KindUnknown {
		return
	}

	deltas, err := decode.ComputeVaultDeltas(instr, tx)
	if err != nil {
		r.logger.Printf("analyze %s: %v", tx.Signature, err)
		return
	}

	if instr.Kind == decode.KindSwap {
		r.dispatch(deltas.Pool, poolWork{swap: &swapSample{
			instr:      instr,
			deltas:     deltas,
			signature:  tx.Signature,
			slot:       tx.Slot,
			observedAt: tx.BlockTime * 1000,
		}})
		return
	}

	event := decode.BuildEvent(instr, deltas, tx)
	if event == nil {
		return
	}
	observability.RecordEventDecoded(event.Kind)
	r.dispatch(event.Pool, poolWork{event: event})
}

// dispatch routes work to the pool's shard so per-pool ordering holds.
func (r *Runner) dispatch(pool string, work poolWork) {
	h := fnv.New32a()
	h.Write([]byte(pool))
	shard := r.shards[int(h.Sum32())%len(r.shards)]
	shard <- work
	observability.UpdateQueueDepth("pool_shard", len(shard))
}

// processPoolWork runs the stateful, per-pool-ordered stages.
func (r *Runner) processPoolWork(work poolWork) {
	ctx := context.Background()

	event := work.event
	if work.swap != nil {
		event = r.spikeEvent(work.swap)
		if event == nil {
			return
		}
		observability.RecordEventDecoded(event.Kind)
	}

	if err := r.events.Insert(ctx, event); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Already fully processed in an earlier run.
			return
		}
		r.logger.Printf("store event %s: %v", event.EventID, err)
		return
	}
	observability.RecordEventStored(event.ObservedAt)

	if r.archive != nil {
		if err := r.archive.Append(ctx, []*domain.LiquidityEvent{event}); err != nil {
			r.logger.Printf("archive event %s: %v", event.EventID, err)
		} else {
			observability.DefaultMetrics.EventsArchived.Inc()
		}
	}

	status, _ := r.windows.Record(event.Pool, event.Kind, event.ObservedAt)
	observability.UpdatePoolWindows(r.windows.PoolCount())

	decisionStart := time.Now()
	enrichment := r.enricher.For(ctx, event)
	verdict := r.engine.Evaluate(event, enrichment, status)

	alert, err := r.boundary.Process(ctx, event, verdict)
	if err != nil {
		r.logger.Printf("record decision for %s: %v", event.EventID, err)
		return
	}
	observability.DefaultMetrics.DecisionLatency.Observe(time.Since(decisionStart).Seconds())
	observability.RecordAlert(verdict.Outcome, alert.Dispatched, alert.QuotaExhausted)
}

// spikeEvent turns a swap sample into a volume_spike event when the
// pool's baseline flags it. Sub-threshold swaps only feed the baseline.
func (r *Runner) spikeEvent(s *swapSample) *domain.LiquidityEvent {
	volume := s.deltas.SolDelta
	if volume < 0 {
		volume = -volume
	}
	multiplier := r.volume.Observe(s.deltas.Pool, volume, s.observedAt)
	if multiplier < minSpikeMultiplier {
		return nil
	}

	return &domain.LiquidityEvent{
		EventID:         idhash.ComputeEventID(s.signature, s.deltas.Pool, domain.EventVolumeSpike),
		Pool:            s.deltas.Pool,
		BaseMint:        s.deltas.TokenMint,
		QuoteSymbol:     "SOL",
		Kind:            domain.EventVolumeSpike,
		SolDelta:        s.deltas.SolDelta,
		SpikeMultiplier: multiplier,
		TxSignature:     s.signature,
		Slot:            s.slot,
		ObservedAt:      s.observedAt,
		CreatedAt:       s.observedAt,
	}
}
