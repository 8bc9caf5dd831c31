package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAPBOX_ACCESS_TOKEN", "token")
	t.Setenv("ROUTING_PROVIDER", "")
	t.Setenv("SOLVER_TIME_LIMIT", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("SOLVER", "")
	t.Setenv("PROVIDER_MAX_ATTEMPTS", "")
	t.Setenv("ESTIMATE_CONCURRENCY", "")
	t.Setenv("WAREHOUSE_LATITUDE", "")
	t.Setenv("WAREHOUSE_LONGITUDE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RoutingProvider != ProviderMapbox {
		t.Fatalf("provider = %q, want %q", cfg.RoutingProvider, ProviderMapbox)
	}
	if cfg.SolverTimeLimit != 15*time.Second {
		t.Fatalf("solver time limit = %v, want 15s", cfg.SolverTimeLimit)
	}
	if cfg.WarehouseLat != 10.8453773 || cfg.WarehouseLon != 106.794445 {
		t.Fatalf("warehouse = (%v, %v), want default", cfg.WarehouseLat, cfg.WarehouseLon)
	}
	if cfg.ProviderMaxAttempts != 1 {
		t.Fatalf("max attempts = %d, want 1", cfg.ProviderMaxAttempts)
	}
	if cfg.CacheBackend != CacheNone {
		t.Fatalf("cache backend = %q, want %q", cfg.CacheBackend, CacheNone)
	}
}

func TestLoadRequiresMapboxToken(t *testing.T) {
	t.Setenv("ROUTING_PROVIDER", "mapbox")
	t.Setenv("MAPBOX_ACCESS_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestLoadOSRMWithoutToken(t *testing.T) {
	t.Setenv("ROUTING_PROVIDER", "osrm")
	t.Setenv("MAPBOX_ACCESS_TOKEN", "")
	t.Setenv("WAREHOUSE_LATITUDE", "21.0285")
	t.Setenv("USE_MATRIX", "true")
	t.Setenv("SOLVER", "")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("SOLVER_TIME_LIMIT", "")
	t.Setenv("PROVIDER_MAX_ATTEMPTS", "")
	t.Setenv("ESTIMATE_CONCURRENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WarehouseLat != 21.0285 {
		t.Fatalf("warehouse lat = %v, want 21.0285", cfg.WarehouseLat)
	}
	if !cfg.UseMatrix {
		t.Fatal("expected matrix mode enabled")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("ROUTING_PROVIDER", "osrm")
	t.Setenv("SOLVER_TIME_LIMIT", "soon")
	t.Setenv("SOLVER", "magic")
	t.Setenv("CACHE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid values")
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("SOME_UNSET_KEY", "")
	if got := Get("SOME_UNSET_KEY", "x"); got != "x" {
		t.Fatalf("Get = %q, want %q", got, "x")
	}
}

func TestLoadAcceptsLvlathSolver(t *testing.T) {
	t.Setenv("ROUTING_PROVIDER", "osrm")
	t.Setenv("SOLVER", "LVLATH")
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("SOLVER_TIME_LIMIT", "")
	t.Setenv("PROVIDER_MAX_ATTEMPTS", "")
	t.Setenv("ESTIMATE_CONCURRENCY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Solver != SolverLvlath {
		t.Fatalf("solver = %q, want %q", cfg.Solver, SolverLvlath)
	}
}

func TestCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "")
	if got, err := CacheTTL(); err != nil || got != DefaultCacheTTL {
		t.Fatalf("CacheTTL() = %v, %v; want %v", got, err, DefaultCacheTTL)
	}

	t.Setenv("CACHE_TTL", "90m")
	if got, err := CacheTTL(); err != nil || got != 90*time.Minute {
		t.Fatalf("CacheTTL() = %v, %v; want 1h30m", got, err)
	}

	t.Setenv("CACHE_TTL", "weekly")
	if _, err := CacheTTL(); err == nil {
		t.Fatal("expected error for unparsable CACHE_TTL")
	}
}
