// Package app wires configuration into the running components shared by
// the server and worker binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/cashflow-forecast/internal/config"
	"github.com/ignite/cashflow-forecast/internal/financial"
	"github.com/ignite/cashflow-forecast/internal/ingest"
	"github.com/ignite/cashflow-forecast/internal/pkg/distlock"
	"github.com/ignite/cashflow-forecast/internal/pkg/logger"
	"github.com/ignite/cashflow-forecast/internal/repository/postgres"
	"github.com/ignite/cashflow-forecast/internal/snapshot"
	"github.com/ignite/cashflow-forecast/internal/snowflake"
	"github.com/ignite/cashflow-forecast/internal/storage"
)

const refreshLockKey = "cashflow:snapshot-refresh"

// App holds the wired components. DB and Redis are nil when not configured.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Redis     *redis.Client
	Source    ingest.Source
	Store     snapshot.Store
	Refresher *snapshot.Refresher
	Storage   *storage.Storage
	Service   *financial.Service
}

// ConfigureLogger applies the logging section of cfg.
func ConfigureLogger(cfg config.LoggingConfig) {
	logger.SetLevel(logger.ParseLevel(cfg.Level))
	logger.SetRedactSecrets(cfg.Redact())
}

// New connects to the configured backends and builds the service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if cfg.Database.Enabled() {
		db, err := openDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.DB = db
	}

	if cfg.Redis.Enabled() {
		a.Redis = openRedis(ctx, cfg.Redis.URL)
	}

	source, err := a.buildSource()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Source = source

	switch cfg.Snapshot.Store {
	case "redis":
		if a.Redis == nil {
			a.Close()
			return nil, fmt.Errorf("snapshot store redis requires a reachable redis.url")
		}
		a.Store = snapshot.NewRedisStore(a.Redis, cfg.Redis.KeyPrefix, cfg.Snapshot.TTL())
	default:
		a.Store = snapshot.NewMemoryStore(cfg.Snapshot.Retain)
	}

	lock := distlock.NewLock(a.Redis, a.DB, refreshLockKey, cfg.Snapshot.LockTTL())
	a.Refresher = snapshot.NewRefresher(a.Source, a.Store, lock, cfg.Snapshot.RefreshInterval())

	a.Storage, err = storage.New(ctx, cfg.Storage)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	if a.DB != nil {
		a.Storage.SetIndex(postgres.NewExportRepo(a.DB))
	}

	a.Service = financial.NewService(a.Store, a.Refresher, cfg.Forecast)
	a.Service.SetExporter(a.Storage)

	logger.Info("application wired",
		"source", a.Source.Name(),
		"snapshot_store", cfg.Snapshot.Store,
		"storage", a.Storage.Backend(),
		"database", a.DB != nil,
		"redis", a.Redis != nil,
	)
	return a, nil
}

func (a *App) buildSource() (ingest.Source, error) {
	switch a.Config.Source.Type {
	case "postgres":
		if a.DB == nil {
			return nil, fmt.Errorf("source postgres requires database.url")
		}
		return postgres.NewLedgerSource(a.DB), nil
	case "snowflake":
		sf := a.Config.Source.Snowflake
		cfg := snowflake.Config{
			Account:   sf.Account,
			User:      sf.User,
			Password:  sf.Password,
			Database:  sf.Database,
			Schema:    sf.Schema,
			Warehouse: sf.Warehouse,
		}
		if sf.ConnectionString != "" {
			cfg = snowflake.ParseConnectionString(sf.ConnectionString)
		}
		return snowflake.NewSource(cfg)
	case "graphql", "":
		return ingest.NewClient(ingest.Config{
			URL:        a.Config.Source.GraphQLURL,
			Timeout:    a.Config.Source.Timeout(),
			MaxRetries: a.Config.Source.MaxRetries,
		}), nil
	}
	return nil, fmt.Errorf("unknown source type %q", a.Config.Source.Type)
}

// Close releases database and Redis connections.
func (a *App) Close() {
	if c, ok := a.Source.(interface{ Close() error }); ok {
		c.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database %s: %w", logger.RedactDSN(cfg.URL), err)
	}
	logger.Info("connected to database", "url", logger.RedactDSN(cfg.URL))
	return db, nil
}

// openRedis returns nil when Redis is unreachable so locking falls back to
// Postgres advisory locks or an in-process lock.
func openRedis(ctx context.Context, url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	var client *redis.Client
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: url})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis connection failed, continuing without redis", "url", logger.RedactDSN(url), "error", err)
		client.Close()
		return nil
	}
	logger.Info("redis connected", "url", logger.RedactDSN(url))
	return client
}
