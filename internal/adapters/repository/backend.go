package repository

import (
	"context"
	"fmt"

	"github.com/foodcart/core/internal/infrastructure/config"
	"github.com/foodcart/core/internal/infrastructure/database"
	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/infrastructure/redisstore"
	"github.com/foodcart/core/internal/ports"
)

// Backend bundles the repositories of one storage driver.
type Backend struct {
	Driver string
	Users  ports.UserRepository
	Carts  ports.CartRepository

	healthCheck func() error
	info        func() map[string]interface{}
	close       func() error
}

// NewFileBackend serves both repositories from an initialized FileStore.
func NewFileBackend(store *FileStore) *Backend {
	return &Backend{
		Driver:      config.StorageDriverFile,
		Users:       NewFileUserRepository(store),
		Carts:       NewFileCartRepository(store),
		healthCheck: store.HealthCheck,
		info: func() map[string]interface{} {
			return map[string]interface{}{"data_dir": store.DataDir()}
		},
		close: func() error { return nil },
	}
}

// NewPostgresBackend serves both repositories from a PostgreSQL connection.
func NewPostgresBackend(db *database.DB) *Backend {
	return &Backend{
		Driver:      config.StorageDriverPostgres,
		Users:       NewUserRepository(db.DB),
		Carts:       NewCartRepository(db),
		healthCheck: db.HealthCheck,
		info:        db.GetConnectionInfo,
		close:       db.Close,
	}
}

// NewRedisBackend serves both repositories from a redis connection.
func NewRedisBackend(client *redisstore.Client) *Backend {
	return &Backend{
		Driver:      config.StorageDriverRedis,
		Users:       NewRedisUserRepository(client),
		Carts:       NewRedisCartRepository(client),
		healthCheck: client.HealthCheck,
		info:        client.GetConnectionInfo,
		close:       client.Close,
	}
}

// Open prepares the backend selected by cfg.Storage.Driver. The file driver
// creates its data directory and documents; the postgres driver connects
// and applies pending migrations; the redis driver connects with retries.
func Open(cfg *config.Config, observer ports.StoreObserver, appLogger *logger.Logger) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverFile:
		store := NewFileStore(cfg.Storage.DataDir, observer, appLogger)
		if err := store.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize data files: %w", err)
		}
		appLogger.Infow("File store ready", "data_dir", store.DataDir())
		return NewFileBackend(store), nil

	case config.StorageDriverPostgres:
		db, err := database.New(context.Background(), cfg.Database, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		status, err := db.Migrate("up")
		if err != nil {
			db.Close()
			return nil, err
		}
		appLogger.Infow("Database ready", "host", cfg.Database.Host, "schema_version", status.Version)
		return NewPostgresBackend(db), nil

	case config.StorageDriverRedis:
		client, err := redisstore.New(context.Background(), cfg.Redis, appLogger)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// HealthCheck reports whether the underlying storage is reachable.
func (b *Backend) HealthCheck() error {
	return b.healthCheck()
}

// ConnectionInfo describes the underlying storage for diagnostics.
func (b *Backend) ConnectionInfo() map[string]interface{} {
	return b.info()
}

// Close releases the underlying storage.
func (b *Backend) Close() error {
	return b.close()
}
