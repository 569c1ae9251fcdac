// Package uid provides identifier generators used for entity ids, challenge
// ids, JWT ids and correlation ids.
package uid

// NumberID generates numeric identifiers that sort by creation time.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
