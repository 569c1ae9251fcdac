package instrument

import (
	"encoding/json"
	"strings"
)

// Keys that are always hidden, whatever the configuration says. One-time
// codes and session tokens must never reach a log sink.
var defaultMaskFields = []string{"code", "token", "access_token", "authorization", "secret"}

// Keys whose values keep their last four characters so a phone number can
// still be correlated across log lines.
var defaultTailFields = []string{"identifier", "phone", "to"}

const maskedValue = "***"

// Masker hides sensitive values by key, case-insensitively.
type Masker struct {
	full map[string]struct{}
	tail map[string]struct{}
}

// NewMasker returns a Masker for the default keys plus fields.
func NewMasker(fields ...string) *Masker {
	m := &Masker{
		full: make(map[string]struct{}),
		tail: make(map[string]struct{}),
	}
	for _, f := range append(append([]string{}, defaultMaskFields...), fields...) {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			m.full[f] = struct{}{}
		}
	}
	for _, f := range defaultTailFields {
		if _, hidden := m.full[f]; !hidden {
			m.tail[f] = struct{}{}
		}
	}
	return m
}

// Hides reports whether the value under key is replaced completely.
func (m *Masker) Hides(key string) bool {
	_, ok := m.full[strings.ToLower(key)]
	return ok
}

// Value masks v as found under key. The second result is false when key is
// not sensitive.
func (m *Masker) Value(key string, v any) (any, bool) {
	k := strings.ToLower(key)
	if _, ok := m.full[k]; ok {
		return maskedValue, true
	}
	if _, ok := m.tail[k]; ok {
		if s, isString := v.(string); isString {
			return MaskTail(s), true
		}
	}
	return v, false
}

// Data walks decoded JSON and masks every sensitive key.
func (m *Masker) Data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if masked, ok := m.Value(k, v2); ok {
				out[k] = masked
				continue
			}
			out[k] = m.Data(v2)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			out[k] = v2
		}
		return m.Data(out)
	case []any:
		out := make([]any, len(val))
		for i, v2 := range val {
			out[i] = m.Data(v2)
		}
		return out
	default:
		return v
	}
}

// JSON masks a JSON object or array. The second result is false when payload
// is not JSON.
func (m *Masker) JSON(payload []byte) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}
	out, err := json.Marshal(m.Data(body))
	if err != nil {
		return "", false
	}
	return string(out), true
}

// MaskTail keeps the last four characters of s.
func MaskTail(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
