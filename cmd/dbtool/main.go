package main

import (
	"context"
	"database/sql"
	"delivery-route-optimizer/internal/adapters/cache"
	"delivery-route-optimizer/internal/config"
	"delivery-route-optimizer/internal/platform/db"
	"delivery-route-optimizer/internal/platform/logging"
	"flag"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// dbtool prepares and maintains the SQL estimate cache.
func main() {
	config.LoadDotEnv()

	backend := flag.String("backend", config.Get("CACHE_BACKEND", config.CachePostgres), "cache database: postgres or sqlite")
	prune := flag.Bool("prune", false, "delete estimates older than -ttl after initializing the schema")
	defaultTTL, err := config.CacheTTL()
	if err != nil {
		log.Fatal(err)
	}
	ttl := flag.Duration("ttl", defaultTTL, "estimate age limit used by -prune, defaults to CACHE_TTL")
	flag.Parse()

	if err := logging.Setup(logging.Options{Level: config.Get("LOG_LEVEL", "info")}); err != nil {
		log.Fatal(err)
	}

	conn, dialect, err := open(strings.ToLower(*backend))
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()

	log.Info("Initializing estimate cache schema...")
	if err := cache.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Info("Schema ready.")

	if *prune {
		n, err := cache.Prune(ctx, conn, dialect, *ttl)
		if err != nil {
			log.Fatalf("prune failed: %v", err)
		}
		log.WithField("removed", n).Info("Pruned stale estimates.")
	}
}

func open(backend string) (*sql.DB, cache.Dialect, error) {
	switch backend {
	case config.CachePostgres:
		databaseURL := config.Get("DATABASE_URL", "")
		if strings.TrimSpace(databaseURL) == "" {
			return nil, "", fmt.Errorf("DATABASE_URL is required")
		}
		conn, err := db.Open(databaseURL)
		return conn, cache.DialectPostgres, err
	case config.CacheSqlite:
		conn, err := db.OpenSqlite(config.Get("DB_PATH", "data/estimates.db"))
		return conn, cache.DialectSqlite, err
	default:
		return nil, "", fmt.Errorf("backend %q is not one of postgres, sqlite", backend)
	}
}
