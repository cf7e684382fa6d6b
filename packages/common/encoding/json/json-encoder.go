package json

import (
	"io"

	"entiq/packages/common/encoding"

	json "github.com/json-iterator/go"
)

// Decode given json.
func Decode[T any](input io.Reader) (T, error) {
	var result T

	if err := json.NewDecoder(input).Decode(&result); err != nil {
		encoding.Log.Error("Failed to decode JSON", err.Error(), nil)

		return result, err
	}

	return result, nil
}

func Encode(value any) ([]byte, error) {
	out, err := json.Marshal(value)
	if err != nil {
		encoding.Log.Error("Failed to encode JSON", err.Error(), nil)

		return nil, err
	}

	return out, nil
}
