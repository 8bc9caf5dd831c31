package main

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/adapters/cache"
	"delivery-route-optimizer/internal/adapters/directions"
	"delivery-route-optimizer/internal/adapters/predictor"
	"delivery-route-optimizer/internal/api"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/domain"
	"delivery-route-optimizer/internal/platform/db"
	"delivery-route-optimizer/internal/platform/logging"
	"delivery-route-optimizer/internal/ports"
	"delivery-route-optimizer/internal/services"
	"delivery-route-optimizer/internal/solver"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		log.Fatal(err)
	}

	provider, err := directions.NewClient(directions.Options{
		Flavor:      directions.Flavor(cfg.RoutingProvider),
		BaseURL:     cfg.RoutingBaseURL,
		AccessToken: cfg.MapboxAccessToken,
		Profile:     cfg.RoutingProfile,
		Timeout:     cfg.ProviderTimeout,
		MaxAttempts: cfg.ProviderMaxAttempts,
	})
	if err != nil {
		log.Fatal(err)
	}

	estimateCache, closeCache, err := openCache(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeCache()

	optimizer := &services.Optimizer{
		Provider: provider,
		Collector: &services.EstimateCollector{
			Provider:    provider,
			Predictor:   loadPredictor(cfg),
			Cache:       estimateCache,
			Concurrency: cfg.EstimateConcurrency,
			UseMatrix:   cfg.UseMatrix,
		},
		Solver: &services.RouteSolverAdapter{
			Solver:    newSolver(cfg.Solver),
			TimeLimit: cfg.SolverTimeLimit,
		},
		Settings: services.Settings{
			DefaultWarehouse: domain.Coordinates{Lon: cfg.WarehouseLon, Lat: cfg.WarehouseLat},
			FetchGeometry:    cfg.FetchRouteGeometry,
		},
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(optimizer)

	// Timeouts allow for a cold O(n^2) estimate collection plus the solver budget.
	log.WithFields(log.Fields{
		"addr":     ":" + cfg.Port,
		"provider": cfg.RoutingProvider,
		"solver":   cfg.Solver,
		"cache":    cfg.CacheBackend,
	}).Info("Server listening")
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// loadPredictor returns nil when no model is available; the optimizer then
// uses provider durations only.
func loadPredictor(cfg *config.Config) ports.DurationPredictor {
	if cfg.PredictorURL != "" {
		p, err := predictor.NewHTTPPredictor(cfg.PredictorURL, cfg.ProviderTimeout)
		if err != nil {
			log.WithError(err).Error("remote predictor disabled")
			return nil
		}
		log.WithField("url", cfg.PredictorURL).Info("using remote duration predictor")
		return p
	}

	m, err := predictor.LoadFile(cfg.ModelPath)
	if errors.Is(err, predictor.ErrModelNotFound) {
		log.WithField("path", cfg.ModelPath).Warn("duration model not found; predictions disabled")
		return nil
	}
	if err != nil {
		log.WithError(err).Error("duration model could not be loaded; predictions disabled")
		return nil
	}

	log.WithField("path", cfg.ModelPath).Info("duration model loaded")
	return m
}

func newSolver(name string) ports.RouteSolver {
	switch name {
	case config.SolverExact:
		return solver.HeldKarp{}
	case config.SolverGLS:
		return solver.GuidedLocalSearch{}
	case config.SolverLvlath:
		return solver.Lvlath{}
	default:
		return solver.Auto{Exact: solver.Lvlath{}}
	}
}

func openCache(cfg *config.Config) (ports.EstimateCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CachePostgres:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(context.Background(), conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return cache.NewSQLEstimateCache(conn, cfg.CacheTTL), closer(conn), nil

	case config.CacheSqlite:
		conn, err := db.OpenSqlite(cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(context.Background(), conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return cache.NewSqliteEstimateCache(conn, cfg.CacheTTL), closer(conn), nil

	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("open redis cache at %q: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisEstimateCache(client, cfg.CacheTTL), func() { client.Close() }, nil
	}

	return nil, noop, nil
}

func closer(conn *sql.DB) func() {
	return func() { conn.Close() }
}
