package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"lp-radar/internal/alerting"
	"lp-radar/internal/decode"
	"lp-radar/internal/dedupe"
	"lp-radar/internal/enrich"
	"lp-radar/internal/filter"
	"lp-radar/internal/guardrail"
	"lp-radar/internal/ingest"
	"lp-radar/internal/observability"
	"lp-radar/internal/signals"
	"lp-radar/internal/solana"
	"lp-radar/internal/storage"
	chstore "lp-radar/internal/storage/clickhouse"
	"lp-radar/internal/storage/memory"
	"lp-radar/internal/storage/migrations"
	pgstore "lp-radar/internal/storage/postgres"
)

func main() {
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the event archive (empty to disable)")
	redisAddr := flag.String("redis-addr", "", "Redis address for signature dedup (empty for in-memory dedup)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	program := flag.String("program", decode.RaydiumAMMV4, "AMM program ID to monitor")
	templatePath := flag.String("template", "", "Path to a filter template JSON (empty for built-in defaults)")
	profileName := flag.String("profile", "", "Profile override: built-in name or path to a profile JSON (empty to use the persisted selection)")
	profileState := flag.String("profile-state", "profile.json", "Path to the persisted active-profile record")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	workers := flag.Int("workers", 0, "Concurrent resolve/decode workers (0 for default)")
	shards := flag.Int("shards", 0, "Per-pool serial lanes (0 for default)")
	window := flag.Duration("window", signals.DefaultWindow, "Signal corroboration window")
	volumeWindow := flag.Duration("volume-window", signals.DefaultBaselineWindow, "Rolling volume baseline window")
	dedupeTTL := flag.Duration("dedupe-ttl", time.Hour, "Signature dedup retention")

	flag.Parse()

	logger := log.New(os.Stdout, "[monitor] ", log.LstdFlags|log.Lshortfile)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err := run(ctx, logger, options{
		rpcEndpoint:   *rpcEndpoint,
		wsEndpoint:    *wsEndpoint,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		redisAddr:     *redisAddr,
		useMemory:     *useMemory,
		program:       *program,
		templatePath:  *templatePath,
		profileName:   *profileName,
		profileState:  *profileState,
		workers:       *workers,
		shards:        *shards,
		window:        *window,
		volumeWindow:  *volumeWindow,
		dedupeTTL:     *dedupeTTL,
	})

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type options struct {
	rpcEndpoint   string
	wsEndpoint    string
	postgresDSN   string
	clickhouseDSN string
	redisAddr     string
	useMemory     bool
	program       string
	templatePath  string
	profileName   string
	profileState  string
	workers       int
	shards        int
	window        time.Duration
	volumeWindow  time.Duration
	dedupeTTL     time.Duration
}

func run(ctx context.Context, logger *log.Logger, opts options) error {
	if opts.rpcEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint is required")
	}
	if opts.wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint is required")
	}
	if !opts.useMemory && opts.postgresDSN == "" {
		return fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}
	if !solana.IsValidPubkey(opts.program) {
		return fmt.Errorf("--program %q is not a valid base58 pubkey", opts.program)
	}

	// Filter configuration
	template := filter.DefaultTemplate()
	if opts.templatePath != "" {
		var err error
		template, err = filter.LoadTemplate(opts.templatePath)
		if err != nil {
			return err
		}
	}

	record, err := filter.LoadActiveProfile(opts.profileState)
	if err != nil {
		return err
	}

	profile, err := resolveProfile(opts.profileName, record)
	if err != nil {
		return err
	}
	logger.Printf("Active profile: %s (quota %d/day)", profile.Name, profile.DailyActionQuota)

	// Guardrail with midnight quota reset. The quota counter keys on
	// UTC dates, so the scheduler runs on the same clock.
	guard := guardrail.New(profile.DailyActionQuota, record.SwitchedAt, logger)
	scheduler := cron.New(cron.WithLocation(time.UTC))
	if _, err := guard.StartDailyReset(scheduler); err != nil {
		return fmt.Errorf("schedule daily reset: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Stores
	var eventStore storage.LiquidityEventStore = memory.NewLiquidityEventStore()
	var alertStore storage.AlertStore = memory.NewAlertStore()

	if !opts.useMemory {
		pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("apply postgres migrations: %w", err)
		}

		eventStore = pgstore.NewLiquidityEventStore(pool)
		alertStore = pgstore.NewAlertStore(pool)
	}

	// Optional analytics archive
	var archive storage.EventArchive
	if opts.clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
		if err != nil {
			return fmt.Errorf("apply clickhouse migrations: %w", err)
		}
		defer conn.Close()
		archive = chstore.NewEventArchive(conn, 0)
	}

	// Signature dedup
	var deduper dedupe.Deduper
	if opts.redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		defer client.Close()
		deduper = dedupe.NewRedis(client, opts.dedupeTTL, "lp-radar:sig:")
	} else {
		mem := dedupe.NewMemory(opts.dedupeTTL, opts.dedupeTTL)
		defer mem.Close()
		deduper = mem
	}

	// Solana clients
	rpc := solana.NewHTTPClient(opts.rpcEndpoint)
	ws, err := solana.NewWSClient(ctx, opts.wsEndpoint, nil, logger)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	resolver := ingest.NewResolver(rpc, 0, 0)

	// Signal tracking and enrichment
	windows := signals.NewTracker(opts.window)
	volume := signals.NewVolumeTracker(opts.volumeWindow)
	enricher := enrich.NewEnricher(
		enrich.NewDexScreenerClient(enrich.DexScreenerEndpoint),
		enrich.NewCachedPriceClient("", "", logger),
		logger,
	)

	engine := filter.NewEngine(template, profile)
	boundary := alerting.NewBoundary(alertStore, alerting.NewLogNotifier(logger), guard, logger)

	runner := ingest.NewRunner(ingest.RunnerConfig{
		Program: opts.program,
		Workers: opts.workers,
		Shards:  opts.shards,
	}, ws, resolver, deduper, windows, volume, enricher, engine, boundary, eventStore, archive, logger)

	logger.Println("Starting liquidity monitor...")
	return runner.Run(ctx)
}

// resolveProfile picks the profile: an explicit override beats the
// persisted selection. The override is a built-in name or a JSON path.
func resolveProfile(override string, record filter.ActiveProfileRecord) (*filter.FilterProfile, error) {
	name := override
	if name == "" {
		name = record.Name
	}
	if name == "" {
		name = filter.ProfileBalanced
	}

	if p, err := filter.BuiltinProfile(name); err == nil {
		return p, nil
	}

	if _, err := os.Stat(name); err == nil {
		return filter.LoadProfile(name)
	}

	return nil, fmt.Errorf("unknown profile %q (built-ins: %v)", name, filter.BuiltinProfileNames())
}
