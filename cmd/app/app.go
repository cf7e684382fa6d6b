package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"entiq/packages/common/config"
	"entiq/packages/common/logger"
	"entiq/packages/infrastructure/DB"

	"github.com/labstack/echo/v4"
)

var appLogger = logger.NewSource("APP", logger.Default)

func Start(Router *echo.Echo, database DB.Database) {
	stop := make(chan os.Signal, 1)

	signal.Notify(stop, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		err := Router.Start(":" + config.HTTP.Port)

		appLogger.Info(err.Error(), nil)
	}()

	printAppInfo()

	sig := <-stop

	println()
	appLogger.Info(sig.String()+" signal received, shutting down...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Router.Shutdown(ctx); err != nil {
		appLogger.Error("Failed to stop HTTP server", err.Error(), nil)
	} else {
		appLogger.Info("HTTP server stopped", nil)
	}

	Shutdown(database)
}

func Shutdown(database DB.Database) {
	appLogger.Info("Shutting down...", nil)

	if err := database.Disconnect(); err != nil {
		appLogger.Error("Failed to disconnect from DB", err.Error(), nil)
	}

	appLogger.Info("Shutted down", nil)
}

func printAppInfo() {
	fmt.Print(`

  ███████╗ ███╗   ██╗ ████████╗ ██╗  ██████╗
  ██╔════╝ ████╗  ██║ ╚══██╔══╝ ██║ ██╔═══██╗
  █████╗   ██╔██╗ ██║    ██║    ██║ ██║   ██║
  ██╔══╝   ██║╚██╗██║    ██║    ██║ ██║▄▄ ██║
  ███████╗ ██║ ╚████║    ██║    ██║ ╚██████╔╝
  ╚══════╝ ╚═╝  ╚═══╝    ╚═╝    ╚═╝  ╚══▀▀═╝

`)

	fmt.Println("  Metadata-driven entity query service")

	fmt.Printf("  Driver: %s\n", config.DB.Driver)

	fmt.Printf("  Listening on port: %s\n\n", config.HTTP.Port)

	if config.Debug.Enabled {
		appLogger.Warning("Debug mode enabled.", nil)
		print("\n\n")
	}
}
