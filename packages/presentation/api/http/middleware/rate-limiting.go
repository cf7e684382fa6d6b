package middleware

import (
	"net/http"
	"strconv"
	"time"

	"entiq/packages/common/logger"
	"entiq/packages/presentation/api/http/request"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

var log = logger.NewSource("MIDDLEWARE", logger.Default)

func rateLimiterIdentifierExtractor(ctx echo.Context) (string, error) {
	return ctx.RealIP(), nil
}

func rateLimiterDenyHandler(window time.Duration) func(ctx echo.Context, id string, err error) error {
	retryAfter := int(window.Seconds())

	return func(ctx echo.Context, id string, err error) error {
		ctx.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

		log.Info("Request blocked by rate limiter", request.GetMetadata(ctx))

		return ctx.JSON(
			http.StatusTooManyRequests,
			map[string]string{"message": "Too many requests"},
		)
	}
}

func RateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(50),
			Burst:     100,
			ExpiresIn: time.Minute,
		}),
		DenyHandler:         rateLimiterDenyHandler(time.Second),
		IdentifierExtractor: rateLimiterIdentifierExtractor,
	})
}
