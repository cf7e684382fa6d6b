package entity

import (
	"net/http"
	"net/url"
	"strings"

	jsonenc "entiq/packages/common/encoding/json"
	Error "entiq/packages/common/errors"
	"entiq/packages/common/logger"
	coreEntity "entiq/packages/core/entity"
	"entiq/packages/core/engine"
	"entiq/packages/core/notification"
	"entiq/packages/core/query"
	"entiq/packages/presentation/api/http/request"

	"github.com/labstack/echo/v4"
)

var controllerLogger = logger.NewSource("CONTROLLER", logger.Default)

type Controller struct {
	engine *engine.Engine
}

func NewController(eng *engine.Engine) *Controller {
	return &Controller{engine: eng}
}

// Failures ride the same envelope as successes, data stays [].
// Write failures arrive from the engine already keyed by instance,
// anything else is reported in the request-level bucket.
func respondError(ctx echo.Context, err *Error.Status, result *engine.Result) error {
	if result == nil {
		result = &engine.Result{}
	}
	if result.Data == nil {
		result.Data = []coreEntity.Record{}
	}
	if result.Notifications == nil {
		result.Notifications = notification.NewSet()
	}

	if result.Notifications.IsEmpty() {
		result.Notifications.AddError(notification.RequestKey, err)
	}

	if err.Side() == Error.ServerSide {
		controllerLogger.Error("Request failed", err.Error(), request.GetMetadata(ctx))
	}

	return ctx.JSON(err.Status(), result)
}

// Query parameter lookup is case-insensitive and duplicated
// parameters resolve to the last occurrence. The raw query string is
// walked in wire order, iterating the parsed parameter map would not
// preserve order across case-variant duplicates.
func queryParam(ctx echo.Context, name string) string {
	value := ""
	for _, pair := range strings.Split(ctx.QueryString(), "&") {
		rawKey, rawValue, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil || !strings.EqualFold(key, name) {
			continue
		}

		if decoded, err := url.QueryUnescape(rawValue); err == nil {
			value = decoded
		}
	}
	return value
}

var searchParams = []string{"filter", "sort", "view", "page", "pageSize", "filter_match"}

// Unrecognized parameters do not affect evaluation but are reported,
// a typo like "fitler" silently returning the whole collection is
// harder to notice than a warning.
func warnUnknownParams(ctx echo.Context, set *notification.Set) {
	reported := map[string]bool{}

	for _, pair := range strings.Split(ctx.QueryString(), "&") {
		rawKey, _, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil || key == "" {
			continue
		}

		known := false
		for _, name := range searchParams {
			if strings.EqualFold(key, name) {
				known = true
				break
			}
		}
		if known || reported[strings.ToLower(key)] {
			continue
		}
		reported[strings.ToLower(key)] = true

		set.AddRequestWarning(Error.NewStatusError(
			Error.BadRequest,
			"Unknown query parameter: "+key,
		))
	}
}

func rawRequestFrom(ctx echo.Context) query.RawRequest {
	return query.RawRequest{
		Filter:      queryParam(ctx, "filter"),
		Sort:        queryParam(ctx, "sort"),
		View:        queryParam(ctx, "view"),
		Page:        queryParam(ctx, "page"),
		PageSize:    queryParam(ctx, "pageSize"),
		FilterMatch: queryParam(ctx, "filter_match"),
	}
}

func bindRecord(ctx echo.Context) (coreEntity.Record, *Error.Status) {
	record, err := jsonenc.Decode[coreEntity.Record](ctx.Request().Body)
	if err != nil {
		return nil, Error.NewStatusError(Error.BadRequest, "Failed to decode request body")
	}
	if record == nil {
		return nil, Error.NewStatusError(Error.BadRequest, "Request body is empty")
	}
	return record, nil
}

func (c *Controller) Search(ctx echo.Context) error {
	controllerLogger.Trace("Searching "+ctx.Param("entity")+"...", request.GetMetadata(ctx))

	result, err := c.engine.Search(
		ctx.Request().Context(),
		ctx.Param("entity"),
		rawRequestFrom(ctx),
	)
	if err != nil {
		return respondError(ctx, err, result)
	}

	warnUnknownParams(ctx, result.Notifications)

	return ctx.JSON(http.StatusOK, result)
}

func (c *Controller) Get(ctx echo.Context) error {
	result, err := c.engine.Get(
		ctx.Request().Context(),
		ctx.Param("entity"),
		ctx.Param("id"),
		queryParam(ctx, "view"),
	)
	if err != nil {
		return respondError(ctx, err, result)
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *Controller) Create(ctx echo.Context) error {
	payload, bindErr := bindRecord(ctx)
	if bindErr != nil {
		return respondError(ctx, bindErr, nil)
	}

	result, err := c.engine.Create(ctx.Request().Context(), ctx.Param("entity"), payload)
	if err != nil {
		return respondError(ctx, err, result)
	}

	return ctx.JSON(http.StatusCreated, result)
}

func (c *Controller) Update(ctx echo.Context) error {
	changes, bindErr := bindRecord(ctx)
	if bindErr != nil {
		return respondError(ctx, bindErr, nil)
	}

	result, err := c.engine.Update(
		ctx.Request().Context(),
		ctx.Param("entity"),
		ctx.Param("id"),
		changes,
	)
	if err != nil {
		return respondError(ctx, err, result)
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *Controller) Delete(ctx echo.Context) error {
	withCascade := strings.EqualFold(queryParam(ctx, "cascade"), "true")

	err := c.engine.Delete(
		ctx.Request().Context(),
		ctx.Param("entity"),
		ctx.Param("id"),
		withCascade,
	)
	if err != nil {
		return respondError(ctx, err, nil)
	}

	return ctx.NoContent(http.StatusNoContent)
}
