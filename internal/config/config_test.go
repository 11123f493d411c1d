package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg != def {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "villaged.yaml")
	body := []byte("listen_addr: \":9090\"\nseed: 7\nticks_per_hour: 20\n")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.Seed != 7 || cfg.TicksPerHour != 20 {
		t.Fatalf("cfg = %+v", cfg)
	}
	// Unset keys keep their defaults.
	if cfg.Population != Default().Population {
		t.Fatalf("population = %d, want default", cfg.Population)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [unclosed"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml must fail")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VILLAGESIM_ADDR", ":7070")
	t.Setenv("VILLAGESIM_SEED", "99")
	t.Setenv("VILLAGESIM_POPULATION", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("addr = %s, want :7070", cfg.ListenAddr)
	}
	if cfg.Seed != 99 {
		t.Fatalf("seed = %d, want 99", cfg.Seed)
	}
	// Unparseable overrides are ignored.
	if cfg.Population != Default().Population {
		t.Fatalf("population = %d, want default", cfg.Population)
	}
}

func TestEngineConfigMapping(t *testing.T) {
	cfg := Default()
	cfg.TicksPerHour = 20
	cfg.InteractionRadius = 5
	cfg.InteractionCooldown = 60
	cfg.MaxInteractionsPerTick = 10
	cfg.BroadcastCadence = 4

	ec := cfg.EngineConfig()
	if ec.TicksPerHour != 20 {
		t.Fatalf("ticks per hour = %d", ec.TicksPerHour)
	}
	if ec.Resolver.Radius != 5 || ec.Resolver.CooldownTicks != 60 || ec.Resolver.MaxPerTick != 10 {
		t.Fatalf("resolver = %+v", ec.Resolver)
	}
	if ec.BroadcastCadence != 4 {
		t.Fatalf("broadcast cadence = %d", ec.BroadcastCadence)
	}
}
