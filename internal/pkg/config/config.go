package config

import (
	"io"
	"time"
)

// Config exposes typed lookups over the service configuration.
//
// Missing keys or values that cannot be converted yield the zero value of the
// requested type; callers apply their own defaults.
type Config interface {
	io.Closer

	// GetSecond reads an integer number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer number of minutes.
	GetMinute(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetBinary reads a base64 encoded value.
	GetBinary(key string) []byte

	// GetArray reads a list, either a YAML sequence or "a,b,c". Blank
	// elements are dropped.
	GetArray(key string) []string
}
