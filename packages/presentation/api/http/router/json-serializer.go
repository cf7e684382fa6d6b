package router

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Replaces echo's default encoding/json serializer with jsoniter.
// Response envelopes are encoded on every request, so the faster
// codec is used on both directions of the wire.
type jsonSerializer struct{}

func (jsonSerializer) Serialize(ctx echo.Context, value any, indent string) error {
	enc := json.NewEncoder(ctx.Response())

	if indent != "" {
		enc.SetIndent("", indent)
	}

	return enc.Encode(value)
}

func (jsonSerializer) Deserialize(ctx echo.Context, value any) error {
	return json.NewDecoder(ctx.Request().Body).Decode(value)
}
