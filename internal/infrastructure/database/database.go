package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/foodcart/core/internal/infrastructure/config"
	"github.com/foodcart/core/internal/infrastructure/logger"
)

const (
	connectAttempts = 5
	txAttempts      = 3
)

// DB is the PostgreSQL pool behind the postgres storage driver.
type DB struct {
	DB     *sqlx.DB
	config config.DatabaseConfig
	logger *logger.Logger
}

// New opens the pool and waits for the server to accept connections,
// pinging up to connectAttempts times with a doubling delay.
func New(ctx context.Context, cfg config.DatabaseConfig, appLogger *logger.Logger) (*DB, error) {
	pool, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	log := appLogger.WithComponent("database").WithFields("host", cfg.Host, "database", cfg.Name)

	delay := 500 * time.Millisecond
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = pool.PingContext(pingCtx)
		cancel()
		if err == nil {
			break
		}
		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
		}

		log.Warnw("Database not ready", "attempt", attempt, "retry_in", delay.String(), "error", err)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	log.Infow("Database connected", "max_open_conns", cfg.MaxOpenConns)
	return &DB{DB: pool, config: cfg, logger: log}, nil
}

// Close closes the pool
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// HealthCheck pings the server with a short timeout
func (db *DB) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// GetConnectionInfo reports the target database and pool statistics
func (db *DB) GetConnectionInfo() map[string]interface{} {
	stats := db.DB.Stats()
	return map[string]interface{}{
		"host":             db.config.Host,
		"database":         db.config.Name,
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
	}
}

// WithTransaction runs fn in a serializable transaction named op (used in
// logs and errors). fn may run more than once: attempts that fail with a
// serialization failure or deadlock are rolled back and retried, up to
// txAttempts times.
func (db *DB) WithTransaction(ctx context.Context, op string, fn func(*sqlx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = db.runTx(ctx, fn)
		if err == nil || !retryable(err) {
			break
		}
		db.logger.Debugw("Retrying transaction", "op", op, "attempt", attempt, "error", err)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (db *DB) runTx(ctx context.Context, fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.DB.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// retryable reports serialization_failure and deadlock_detected.
func retryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}
