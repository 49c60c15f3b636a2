package api

import (
	"bytes"

	"github.com/bytedance/sonic"
)

// Payload is a successful response body. It always holds valid JSON: a body
// that was empty or unparseable becomes the empty object.
type Payload []byte

var emptyObject = Payload("{}")

func parsePayload(raw []byte) Payload {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !sonic.ConfigStd.Valid(trimmed) {
		return emptyObject
	}
	return Payload(trimmed)
}

// Decode unmarshals the payload into out.
func (p Payload) Decode(out any) error {
	if len(p) == 0 {
		p = emptyObject
	}
	return sonic.ConfigStd.Unmarshal(p, out)
}

// IsArray reports whether the payload is a JSON array.
func (p Payload) IsArray() bool {
	return len(p) > 0 && p[0] == '['
}

// Object returns the payload as a JSON object, or an empty map when the
// payload is any other JSON value.
func (p Payload) Object() map[string]any {
	if len(p) == 0 || p[0] != '{' {
		return map[string]any{}
	}
	var m map[string]any
	if err := p.Decode(&m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}
