package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entiq/packages/common/config"
	"entiq/packages/common/structs"
	"entiq/packages/core/meta"

	"github.com/jackc/pgx/v5/pgxpool"
)

type connector struct {
	ctx         context.Context
	pool        *pgxpool.Pool
	provider    meta.Provider
	config      *pgxpool.Config
	isConnected bool
}

func defaultTimeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Second*5)
}

// queryContext bounds a single statement by the configured query
// timeout.
func (c *connector) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := config.DB.QueryTimeout()
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *connector) Connect() {
	if c.isConnected {
		dbLogger.Panic("DB connection failed", "connection already established", nil)
	}

	c.ctx = context.Background()

	dbLogger.Info("Creating connection pool...", nil)

	conConfig, err := pgxpool.ParseConfig(fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		config.Secret.DatabaseUser,
		config.Secret.DatabasePassword,
		config.Secret.DatabaseHost,
		config.Secret.DatabasePort,
		config.Secret.DatabaseName,
	))
	if err != nil {
		dbLogger.Fatal("Failed to parse DB connection URI", err.Error(), nil)
	}

	conConfig.MinConns = 10
	conConfig.MaxConns = 50
	conConfig.MaxConnIdleTime = time.Minute * 5
	conConfig.MaxConnLifetime = time.Minute * 60

	c.config = conConfig

	pool, err := pgxpool.NewWithConfig(c.ctx, conConfig)
	if err != nil {
		dbLogger.Fatal("Failed to create connection pool", err.Error(), nil)
	}

	dbLogger.Info("Creating connection pool: OK", nil)

	dbLogger.Info("Ping connection...", nil)

	ctx, cancel := defaultTimeoutContext()

	defer cancel()

	if err = pool.Ping(ctx); err != nil {
		if err == context.DeadlineExceeded {
			dbLogger.Fatal("Failed to ping DB", "Ping timeout", nil)
		}

		dbLogger.Fatal("Failed to ping DB", err.Error(), nil)
	}

	dbLogger.Info("Ping connection: OK", nil)

	c.pool = pool

	if err := c.ensureSchema(); err != nil {
		dbLogger.Fatal("Schema setup failed", err.Error(), nil)
	}

	c.isConnected = true
}

func (c *connector) Disconnect() error {
	if !c.isConnected {
		return errors.New("connection not established")
	}

	dbLogger.Info("Closing connection pool...", nil)

	err := structs.SetTimeout(context.Background(), time.Second*10, func(_ context.Context) {
		c.pool.Close()
	})
	if err != nil {
		return errors.New("timeout exceeded")
	}

	dbLogger.Info("Closing connection pool: OK", nil)

	c.isConnected = false

	return nil
}

func (c *connector) exec(logBase string, query string) error {
	dbLogger.Info(logBase+"...", nil)

	ctx, cancel := defaultTimeoutContext()

	defer cancel()

	if _, err := c.pool.Exec(ctx, query); err != nil {
		return errors.New(logBase + ": ERROR " + err.Error())
	}

	dbLogger.Info(logBase+": OK", nil)

	return nil
}
