package extract

import (
	"encoding/json"
	"io"
)

// decodeJSON is a test helper for asserting on a provider's outgoing request body.
func decodeJSON(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)
	return decoder.Decode(v)
}
