// Package config reads service settings from a YAML file with environment
// overrides. Missing keys read as zero values; callers pick their defaults.
package config

import (
	"io"
	"time"
)

// Durations are stored as plain integers and scaled by the getter, so a key
// like sms.http.base_delay_ms reads with GetMillisecond.
type DurationConfig interface {
	GetMillisecond(key string) time.Duration
	GetSecond(key string) time.Duration
	GetDay(key string) time.Duration
}

type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetUint64(key string) uint64
	GetFloat64(key string) float64
}

// Config is the read side every component depends on.
type Config interface {
	io.Closer
	DurationConfig
	NumberConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value. Invalid input reads as nil.
	GetBinary(key string) []byte

	// GetArray accepts a YAML sequence or a comma separated string, the
	// latter being the only form an environment override can take. Elements
	// are trimmed and empty ones dropped.
	GetArray(key string) []string

	// OnChange registers fn to run after the backing file is reloaded.
	// Sources that never reload accept fn and never call it.
	OnChange(fn func())
}
