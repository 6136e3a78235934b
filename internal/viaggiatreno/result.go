package viaggiatreno

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Result is the classified payload of one successful request. The variant
// is decided by the response's declared content type, never by inspecting
// the body: the service mixes JSON and pipe-delimited text endpoints and
// the header is the only reliable signal.
type Result struct {
	isJSON bool
	raw    []byte
	text   string
}

// JSONResult wraps a raw JSON payload.
func JSONResult(raw []byte) Result {
	return Result{isJSON: true, raw: raw}
}

// TextResult wraps a plain-text payload.
func TextResult(text string) Result {
	return Result{text: text}
}

func classify(contentType string, body []byte) Result {
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		return JSONResult(body)
	}
	return TextResult(string(body))
}

// IsJSON reports whether the response declared a JSON content type.
func (r Result) IsJSON() bool { return r.isJSON }

// JSON returns the raw JSON payload, nil for text results.
func (r Result) JSON() []byte {
	if !r.isJSON {
		return nil
	}
	return r.raw
}

// Text returns the text payload, "" for JSON results.
func (r Result) Text() string { return r.text }

// Decode unmarshals a JSON result into v.
func (r Result) Decode(v any) error {
	if !r.isJSON {
		return fmt.Errorf("decoding text result as JSON")
	}
	return json.Unmarshal(r.raw, v)
}

// Empty reports whether the payload carries no data. An empty board is the
// service's legitimate "nothing scheduled" answer and must not be treated
// as a failure.
func (r Result) Empty() bool {
	if r.isJSON {
		switch strings.TrimSpace(string(r.raw)) {
		case "", "null", "[]", "{}", `""`:
			return true
		}
		return false
	}
	return strings.TrimSpace(r.text) == ""
}
