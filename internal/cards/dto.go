package cards

import "encoding/json"

// Envelope wraps an opaque provider payload. Using RawMessage keeps the bytes
// exactly as received, so identical upstream responses produce identical
// gateway responses.
type Envelope struct {
	Data json.RawMessage `json:"data"`
}
