package calc

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/ardnew/fxyaml/pkg"
)

// ErrContext is returned when an initial context cannot be decoded.
var ErrContext = pkg.NewError("invalid context")

var errNotObject = errors.New("context must be a JSON object")

// DecodeContext decodes an initial context from JSON.
//
// The context may be a JSON object, a JSON string whose contents are a JSON
// object, or null. Empty input, null, and an empty string all yield a nil
// map. Any other value is an [ErrContext].
func DecodeContext(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, ErrContext.Wrap(err)
		}

		return DecodeContext([]byte(s))
	}

	if raw[0] != '{' {
		return nil, ErrContext.Wrap(errNotObject)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, ErrContext.Wrap(err)
	}

	return m, nil
}
