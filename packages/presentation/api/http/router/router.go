package router

import (
	"net/http"

	"entiq/packages/common/config"
	"entiq/packages/common/logger"
	"entiq/packages/core/engine"
	EntityController "entiq/packages/presentation/api/http/controllers/entity"
	apimiddleware "entiq/packages/presentation/api/http/middleware"
	"entiq/packages/presentation/api/http/request"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.NewSource("ROUTER", logger.Default)

func Create(eng *engine.Engine) *echo.Echo {
	if config.Secret.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              config.Secret.SentryDSN,
			Debug:            config.Debug.Enabled,
			ServerName:       config.App.ServiceID,
			AttachStacktrace: true,
		}); err != nil {
			panic("Sentry initialization failed: " + err.Error())
		}
	}

	router := echo.New()

	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = handleHttpError
	router.JSONSerializer = jsonSerializer{}

	cors := middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: config.HTTP.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		},
	}

	router.Use(apimiddleware.SecurityHeaders)
	router.Use(middleware.BodyLimit("1M"))
	router.Use(middleware.CORSWithConfig(cors))
	router.Use(middleware.RequestID())
	router.Use(request.Middleware)
	router.Use(apimiddleware.RateLimiter())

	if config.Secret.SentryDSN != "" {
		router.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	if config.Debug.Enabled {
		router.Use(middleware.Logger())
	}

	controller := EntityController.NewController(eng)

	apiV1 := router.Group("/v1")

	entities := apiV1.Group("/entities/:entity")

	entities.GET("", controller.Search)
	entities.POST("", controller.Create)
	entities.GET("/:id", controller.Get)
	entities.PATCH("/:id", controller.Update)
	entities.DELETE("/:id", controller.Delete)

	log.Info("Router created", nil)

	return router
}
