package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	ProviderMapbox = "mapbox"
	ProviderOSRM   = "osrm"

	SolverAuto   = "auto"
	SolverExact  = "exact"
	SolverGLS    = "gls"
	SolverLvlath = "lvlath"

	CacheNone     = "none"
	CachePostgres = "postgres"
	CacheSqlite   = "sqlite"
	CacheRedis    = "redis"
)

// DefaultCacheTTL applies when CACHE_TTL is unset.
const DefaultCacheTTL = 24 * time.Hour

// Config is the process-wide, read-only configuration built once at startup.
type Config struct {
	Port string

	RoutingProvider     string
	MapboxAccessToken   string
	RoutingBaseURL      string
	RoutingProfile      string
	ProviderTimeout     time.Duration
	ProviderMaxAttempts int
	UseMatrix           bool

	WarehouseLat float64
	WarehouseLon float64

	ModelPath    string
	PredictorURL string

	EstimateConcurrency int
	Solver              string
	SolverTimeLimit     time.Duration
	FetchRouteGeometry  bool

	CacheBackend string
	DatabaseURL  string
	DBPath       string
	RedisAddr    string
	CacheTTL     time.Duration

	LogLevel string
	LogFile  string
}

// LoadDotEnv loads a .env file when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found (using environment variables)")
	}
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Port:              Get("PORT", "8001"),
		RoutingProvider:   strings.ToLower(Get("ROUTING_PROVIDER", ProviderMapbox)),
		MapboxAccessToken: os.Getenv("MAPBOX_ACCESS_TOKEN"),
		RoutingBaseURL:    os.Getenv("ROUTING_BASE_URL"),
		RoutingProfile:    Get("ROUTING_PROFILE", "driving"),
		ModelPath:         Get("DELIVERY_MODEL_PATH", "delivery_duration_predictor.json"),
		PredictorURL:      os.Getenv("PREDICTOR_URL"),
		Solver:            strings.ToLower(Get("SOLVER", SolverAuto)),
		CacheBackend:      strings.ToLower(Get("CACHE_BACKEND", CacheNone)),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBPath:            Get("DB_PATH", "data/estimates.db"),
		RedisAddr:         Get("REDIS_ADDR", "localhost:6379"),
		LogLevel:          Get("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
	}

	cfg.ProviderTimeout = getDuration("PROVIDER_TIMEOUT", 10*time.Second, &errs)
	cfg.ProviderMaxAttempts = getInt("PROVIDER_MAX_ATTEMPTS", 1, &errs)
	cfg.UseMatrix = getBool("USE_MATRIX", false, &errs)
	cfg.WarehouseLat = getFloat("WAREHOUSE_LATITUDE", 10.8453773, &errs)
	cfg.WarehouseLon = getFloat("WAREHOUSE_LONGITUDE", 106.794445, &errs)
	cfg.EstimateConcurrency = getInt("ESTIMATE_CONCURRENCY", 8, &errs)
	cfg.SolverTimeLimit = getDuration("SOLVER_TIME_LIMIT", 15*time.Second, &errs)
	cfg.FetchRouteGeometry = getBool("FETCH_ROUTE_GEOMETRY", true, &errs)
	cfg.CacheTTL = getDuration("CACHE_TTL", DefaultCacheTTL, &errs)

	switch cfg.RoutingProvider {
	case ProviderMapbox:
		if strings.TrimSpace(cfg.MapboxAccessToken) == "" {
			errs = append(errs, errors.New("MAPBOX_ACCESS_TOKEN is required for the mapbox provider"))
		}
	case ProviderOSRM:
	default:
		errs = append(errs, fmt.Errorf("ROUTING_PROVIDER %q is not one of mapbox, osrm", cfg.RoutingProvider))
	}

	switch cfg.Solver {
	case SolverAuto, SolverExact, SolverGLS, SolverLvlath:
	default:
		errs = append(errs, fmt.Errorf("SOLVER %q is not one of auto, exact, gls, lvlath", cfg.Solver))
	}

	switch cfg.CacheBackend {
	case CacheNone, CacheSqlite, CacheRedis:
	case CachePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND %q is not one of none, postgres, sqlite, redis", cfg.CacheBackend))
	}

	if cfg.ProviderMaxAttempts < 1 {
		errs = append(errs, errors.New("PROVIDER_MAX_ATTEMPTS must be at least 1"))
	}
	if cfg.EstimateConcurrency < 1 {
		errs = append(errs, errors.New("ESTIMATE_CONCURRENCY must be at least 1"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("load config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// CacheTTL reads CACHE_TTL alone, for tools that do not need a full Load.
func CacheTTL() (time.Duration, error) {
	var errs []error
	ttl := getDuration("CACHE_TTL", DefaultCacheTTL, &errs)
	return ttl, errors.Join(errs...)
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
