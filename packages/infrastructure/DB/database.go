package DB

import (
	"entiq/packages/common/config"
	"entiq/packages/common/logger"
	"entiq/packages/core/entity"
	"entiq/packages/core/meta"
	"entiq/packages/infrastructure/DB/elastic"
	"entiq/packages/infrastructure/DB/mongodb"
	"entiq/packages/infrastructure/DB/postgres"
)

var dbLogger = logger.NewSource("DB", logger.Default)

// Database is a connectable entity repository.
type Database interface {
	Connect()
	Disconnect() error

	entity.Repository
}

// New selects the adapter for the configured driver. The returned
// database is not connected yet.
func New(provider meta.Provider) Database {
	switch config.DB.Driver {
	case "relational":
		return postgres.NewDriver(provider)
	case "document":
		return mongodb.NewDriver(provider)
	case "search":
		return elastic.NewDriver(provider)
	}

	dbLogger.Panic("Failed to select DB driver", "unknown driver: "+config.DB.Driver, nil)

	return nil
}
