// Genesis runs an autonomous agent population: founders wake in a generated
// world, form bonds, raise children, weather crises, and die, while an HTTP
// API exposes the unfolding history.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/genesis/internal/api"
	"github.com/talgya/genesis/internal/config"
	"github.com/talgya/genesis/internal/engine"
	"github.com/talgya/genesis/internal/entropy"
	"github.com/talgya/genesis/internal/persistence"
	"github.com/talgya/genesis/internal/world"
)

func main() {
	cfgPath := flag.String("config", "genesis.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		slog.Error("create data dir", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.ArchiveDir, 0o755); err != nil {
		slog.Error("create archive dir", "error", err)
		os.Exit(1)
	}

	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer db.Close()

	// The world regenerates deterministically from the seed; only agents and
	// history live in the database.
	w := world.New(cfg.Seed, float64(cfg.WorldSize))
	slog.Info("world generated", "seed", cfg.Seed, "size", cfg.WorldSize)

	events := engine.NewEventLog()
	pub := engine.NewPublisher()
	sched := engine.NewScheduler(w, entropy.New(cfg.Seed), events, pub)

	if pop, err := db.LoadAgents(); err != nil {
		slog.Error("load agents", "error", err)
		os.Exit(1)
	} else if len(pop) > 0 {
		tick := uint64(0)
		if v, err := db.GetMeta("last_tick"); err == nil {
			if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
				tick = parsed
			}
		}
		sched.Restore(pop, tick)
		slog.Info("world restored", "agents", len(pop), "tick", tick, "sim_time", engine.SimTime(tick))
	} else {
		sched.Seed(cfg.Founders)
		slog.Info("founders spawned", "count", cfg.Founders)
		if err := db.SaveWorldState(sched); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	ticker := engine.NewTicker(sched, cfg.Speed, 50*time.Millisecond)
	ticker.OnDay = func() {
		if err := db.SaveWorldState(sched); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	}

	srv := &api.Server{
		Pub:        pub,
		Sched:      sched,
		Ticker:     ticker,
		Events:     events,
		DB:         db,
		Port:       cfg.Port,
		AdminKey:   cfg.AdminKey,
		ArchiveDir: cfg.ArchiveDir,
	}
	if cfg.AdminKey == "" {
		slog.Warn("GENESIS_ADMIN_KEY not set, admin POST endpoints disabled")
	}
	srv.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Genesis is alive: %d souls at tick %d.\n", len(sched.LiveAgents()), sched.CurrentTick())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	fmt.Println("Running... (Ctrl+C to stop)")

	ticker.Run(ctx)

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown", "error", err)
	}
	if err := db.SaveWorldState(sched); err != nil {
		slog.Error("final save failed", "error", err)
	}
	slog.Info("goodbye", "tick", sched.CurrentTick(), "population", len(sched.LiveAgents()))
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
