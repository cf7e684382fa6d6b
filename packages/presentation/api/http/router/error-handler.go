package router

import (
	"net/http"

	Error "entiq/packages/common/errors"
	"entiq/packages/presentation/api/http/request"

	"github.com/labstack/echo/v4"
)

// Catches everything the entity controller didn't shape itself:
// unknown routes, rejected bodies, panics recovered by echo.
func handleHttpError(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal Server Error"

	if e, is := err.(*echo.HTTPError); is {
		code = e.Code
		if m, is := e.Message.(string); is {
			message = m
		}
	}

	taxonomy := Error.BadRequest
	if code >= 500 {
		taxonomy = Error.Internal
		log.Error(message, http.StatusText(code), request.GetMetadata(ctx))
	}
	if code == http.StatusNotFound {
		taxonomy = Error.NotFound
	}

	ctx.JSON(code, map[string]string{
		"error":   string(taxonomy),
		"message": Error.CapMessage(message),
	})
}
