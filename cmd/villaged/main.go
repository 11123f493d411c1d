// Command villaged runs the Emberhollow village simulation daemon.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/emberhollow/villagesim/internal/api"
	"github.com/emberhollow/villagesim/internal/broadcast"
	"github.com/emberhollow/villagesim/internal/config"
	"github.com/emberhollow/villagesim/internal/engine"
	"github.com/emberhollow/villagesim/internal/persistence"
	"github.com/emberhollow/villagesim/internal/villager"
	"github.com/emberhollow/villagesim/internal/world"
)

// updatePeriod is the driver loop cadence. Each pass hands the elapsed
// wall time to the engine, which converts it into zero or more ticks.
const updatePeriod = 50 * time.Millisecond

func main() {
	configPath := flag.String("config", "villaged.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	slog.Info("Emberhollow — Village Simulation")

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	gateway := persistence.NewGateway(db, time.Duration(cfg.SaveIntervalSec)*time.Second)

	// ── World Map (always regenerated — deterministic from seed) ──────
	genCfg := world.DefaultGenConfig()
	genCfg.Seed = cfg.Seed
	genCfg.Size = cfg.MapSize
	grid, err := world.Generate(genCfg)
	if err != nil {
		slog.Error("world generation failed", "error", err)
		os.Exit(1)
	}
	for terrain, count := range grid.TerrainCounts() {
		slog.Info("terrain", "type", world.TerrainName(terrain), "count", count)
	}
	slog.Info("world generated", "size", grid.Size, "buildings", len(grid.Buildings), "seed", cfg.Seed)

	// ── Load or Generate Village State ────────────────────────────────
	var eng *engine.Engine
	engCfg := cfg.EngineConfig()

	snap, found, err := gateway.LoadState()
	if err != nil {
		slog.Error("failed to load saved state", "error", err)
		os.Exit(1)
	}
	if found {
		eng = engine.NewFromSnapshot(engCfg, grid, *snap, cfg.Seed)
		slog.Info("village state restored",
			"villagers", len(snap.Villagers),
			"day", snap.Day,
			"tick", snap.Tick,
		)
	} else {
		slog.Info("no saved state found, spawning new village...")
		spawner := villager.NewSpawner(cfg.Seed)
		population := spawner.SpawnPopulation(grid, cfg.Population)
		eng = engine.New(engCfg, grid, population, cfg.Seed)
		eng.Start()
		slog.Info("village spawned", "villagers", len(population))
	}

	// ── Broadcast hub and event wiring ────────────────────────────────
	hub := broadcast.NewHub()
	eng.Listeners().OnTick(hub.HandleTick)
	eng.Listeners().OnNewDay(func(ev engine.DayEvent) {
		stats := eng.Stats()
		slog.Info("daily report",
			"day", ev.Day,
			"coins_moved", humanize.Comma(int64(stats.CoinsMoved)),
			"items_moved", humanize.Comma(int64(stats.ItemsMoved)),
		)
		go gateway.ForceSave(eng)
	})

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("no admin key configured — control endpoints are open")
	}
	apiServer := &api.Server{
		Eng:      eng,
		Hub:      hub,
		DB:       db,
		Addr:     cfg.ListenAddr,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Run ───────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	st := eng.ClockState()
	fmt.Printf("\nEmberhollow is alive: day %d, %s.\n", st.Day, humanize.Ordinal(st.Tick+1)+" tick")
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.ListenAddr)
	fmt.Println("Running... (Ctrl+C to stop)")

	ticker := time.NewTicker(updatePeriod)
	defer ticker.Stop()
	saveTicker := time.NewTicker(time.Duration(cfg.SaveIntervalSec) * time.Second)
	defer saveTicker.Stop()

	last := time.Now()
loop:
	for {
		select {
		case now := <-ticker.C:
			eng.Update(float64(now.Sub(last).Milliseconds()))
			last = now
		case <-saveTicker.C:
			gateway.SaveState(eng)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			break loop
		}
	}

	// Final save on shutdown. Pause first so the saved snapshot is quiescent.
	eng.Pause()
	hub.Close()
	gateway.ForceSave(eng)
	fmt.Println("Simulation stopped. Village state saved.")
}

func logLevel(name string) slog.Level {
	switch name {
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
