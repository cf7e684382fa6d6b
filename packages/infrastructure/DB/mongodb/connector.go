package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"entiq/packages/common/config"
	"entiq/packages/core/meta"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type connector struct {
	client      *mongo.Client
	database    *mongo.Database
	provider    meta.Provider
	isConnected bool
}

func defaultTimeoutContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Second*5)
}

func (c *connector) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := config.DB.QueryTimeout()
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *connector) collection(entityName string) *mongo.Collection {
	return c.database.Collection(strings.ToLower(entityName))
}

func (c *connector) Connect() {
	if c.isConnected {
		dbLogger.Panic("DB connection failed", "connection already established", nil)
	}

	dbLogger.Info("Connecting to MongoDB...", nil)

	ctx, cancel := defaultTimeoutContext()

	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.Secret.MongoURI))
	if err != nil {
		dbLogger.Fatal("Failed to connect to MongoDB", err.Error(), nil)
	}

	if err := client.Ping(ctx, nil); err != nil {
		dbLogger.Fatal("Failed to ping MongoDB", err.Error(), nil)
	}

	c.client = client
	c.database = client.Database(config.Secret.MongoDatabase)
	c.isConnected = true

	dbLogger.Info("Connecting to MongoDB: OK", nil)
}

func (c *connector) Disconnect() error {
	if !c.isConnected {
		return errors.New("connection not established")
	}

	dbLogger.Info("Closing MongoDB connection...", nil)

	ctx, cancel := defaultTimeoutContext()

	defer cancel()

	if err := c.client.Disconnect(ctx); err != nil {
		return err
	}

	dbLogger.Info("Closing MongoDB connection: OK", nil)

	c.isConnected = false

	return nil
}
