package module

import "time"

// Config is the read-only configuration view handed to modules. Backed by
// the server's viper configuration; all accessors are nil-safe and return
// zero values for unset keys.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetDuration(key string) time.Duration
	IsSet(key string) bool

	// Sub returns the configuration subtree under key. Never nil.
	Sub(key string) Config

	// Unmarshal decodes the configuration into a struct via mapstructure
	// tags.
	Unmarshal(target any) error
}
