package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"auditflow/internal/agent"
	"auditflow/internal/config"
	"auditflow/internal/events"
	"auditflow/internal/insight"
	"auditflow/internal/orchestrator"
	"auditflow/internal/persistence"
	"auditflow/internal/statusfeed"
	"auditflow/internal/store"
)

func main() {
	var (
		targetURL   = flag.String("url", "", "Target site URL (required)")
		companyName = flag.String("company", "", "Company name (derived from the site when empty)")
		mode        = flag.String("mode", orchestrator.ModeFull, "Run mode: full or quick")
		dbPath      = flag.String("db", "", "SQLite path for results (overrides config; \"none\" disables)")
		listen      = flag.String("listen", "", "Listen address for the websocket status feed (overrides config)")
		phase       = flag.String("phase", "", "Run a single named phase instead of the full pipeline")
	)
	flag.Parse()

	if *targetURL == "" {
		fmt.Fprintln(os.Stderr, "Usage: auditflow -url https://example.com [-mode quick] [-phase Analysis]")
		os.Exit(2)
	}
	if *mode != orchestrator.ModeFull && *mode != orchestrator.ModeQuick {
		fmt.Fprintf(os.Stderr, "Unknown run mode %q\n", *mode)
		os.Exit(2)
	}

	// Signal-aware context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *listen != "" {
		cfg.StatusFeed.Listen = *listen
	}

	runID := uuid.New().String()
	st := store.New(runID, *targetURL, *companyName, *mode)

	bus := events.NewBus()
	defer bus.Close()
	statusfeed.LogReporter{}.Attach(bus)

	var sink agent.Sink = agent.NopSink{}
	if cfg.Database.Path != "" && cfg.Database.Path != "none" {
		sqlStore, err := persistence.NewSQLiteStore(ctx, cfg.Database.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		if err := sqlStore.StartRun(ctx, runID, *targetURL, *companyName, *mode); err != nil {
			fmt.Fprintf(os.Stderr, "Error recording run: %v\n", err)
			os.Exit(1)
		}
		sink = sqlStore
	}

	var ic *insight.Client
	if cfg.Insight.Endpoint != "" {
		ic, err = insight.New(insight.Config{
			Endpoint:  cfg.Insight.Endpoint,
			APIKey:    cfg.Insight.APIKey,
			Model:     cfg.Insight.Model,
			MaxTokens: cfg.Insight.MaxTokens,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error configuring insight client: %v\n", err)
			os.Exit(1)
		}
	}

	if cfg.StatusFeed.Listen != "" {
		hub := statusfeed.NewHub(bus)
		go hub.Start(ctx)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		srv := &http.Server{Addr: cfg.StatusFeed.Listen, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("WARNING: status feed server: %v", err)
			}
		}()
		defer srv.Close()
		log.Printf("Status feed listening on %s/ws", cfg.StatusFeed.Listen)
	}

	pipeline := orchestrator.New(st, bus, sink, ic, cfg.Crawl)
	if err := pipeline.RegisterAll(); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering agents: %v\n", err)
		os.Exit(1)
	}

	if *phase != "" {
		if err := runSinglePhase(ctx, pipeline, *phase); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := pipeline.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Run aborted: %v\n", err)
			os.Exit(1)
		}
	}

	summary := pipeline.Summary()
	printSummary(summary, runID)

	if err := summary.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runSinglePhase runs one named phase in isolation. A phase that settles
// with zero executed agents (everything skipped or filtered) is a hard
// error, so running a phase without its dependency phases cannot pass
// silently.
func runSinglePhase(ctx context.Context, pipeline *orchestrator.Pipeline, phaseName string) error {
	for _, p := range orchestrator.Phases {
		if p.Name != phaseName {
			continue
		}
		if n := pipeline.RunPhase(ctx, p.Name, p.AgentNames); n == 0 {
			return fmt.Errorf("phase %q executed no agents; run its dependency phases first", phaseName)
		}
		return ctx.Err()
	}
	return fmt.Errorf("unknown phase %q", phaseName)
}

func printSummary(s orchestrator.Summary, runID string) {
	fmt.Printf("\nRun %s: %d completed, %d failed, %d pending of %d agents\n",
		runID, s.Completed, s.Failed, s.Pending, s.Total)
	for _, rec := range s.Records {
		line := fmt.Sprintf("  %-12s %-10s %3d%%", rec.Name, rec.Status, rec.Progress)
		if rec.ErrorDetail != "" {
			line += "  " + rec.ErrorDetail
		}
		fmt.Println(line)
	}
}
