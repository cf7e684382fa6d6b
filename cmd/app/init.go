package app

import (
	"context"
	"os"
	"runtime"

	"entiq/packages/common/config"
	"entiq/packages/common/logger"
	"entiq/packages/core/engine"
	"entiq/packages/core/meta"
	"entiq/packages/infrastructure/DB"
	"entiq/packages/infrastructure/schema"
	"entiq/packages/presentation/api/http/router"

	"github.com/labstack/echo/v4"
)

func StartInit() {
	Args.Parse()

	// All init logs are shown regardless of flags.
	logger.Silent.Store(false)
}

func EndInit() {
	if !config.App.ShowLogs && !*Args.ShowLogs {
		logger.Silent.Store(true)
	}
}

func InitDefault() {
	// Program wasn't tested on OS other than Linux.
	if runtime.GOOS != "linux" {
		println("[ CRITICAL ERROR ] OS is not supported. This program can be used only on Linux-based OS.")
		os.Exit(1)
	}

	config.Init(*Args.Config)

	if *Args.Debug {
		config.Debug.Enabled = true
	}

	logger.Debug.Store(config.Debug.Enabled)
	logger.Trace.Store(config.App.TraceLogsEnabled || *Args.TraceLogs)
}

func InitSchema() meta.Provider {
	appLogger.Info("Loading schema...", nil)

	provider, err := schema.Load(config.App.SchemaPath)
	if err != nil {
		appLogger.Fatal("Failed to load schema", err.Error(), nil)
	}

	appLogger.Info("Loading schema: OK", nil)

	return provider
}

func InitConnections(provider meta.Provider) DB.Database {
	appLogger.Info("Initializng connections...", nil)

	database := DB.New(provider)

	database.Connect()

	// Unique constraints are declared in metadata, every backend
	// installs or registers them up front.
	for _, ent := range provider.Entities() {
		fields := ent.UniqueFields()
		if len(fields) == 0 {
			continue
		}

		if err := database.EnsureUniqueIndexes(context.Background(), ent.Name, fields); err != nil {
			appLogger.Fatal("Failed to ensure unique indexes for "+ent.Name, err.Error(), nil)
		}
	}

	appLogger.Info("Initializng connections: OK", nil)

	return database
}

func InitRouter(database DB.Database, provider meta.Provider) *echo.Echo {
	appLogger.Info("Initializng router...", nil)

	eng := engine.New(database, provider, engine.Options{
		DefaultPageSize: config.DB.DefaultPageSize,
		MaxPageSize:     config.DB.MaxPageSize,
	})

	Router := router.Create(eng)

	appLogger.Info("Initializng router: OK", nil)

	return Router
}
