// Package config provides process-configuration lookup for swptlib.
//
// Values are resolved in two steps: an in-process override map first
// (set by the embedding application or by tests), then the environment.
// An empty string means "not configured".
package config

import (
	"os"
	"sync"
)

var (
	mu        sync.RWMutex
	overrides = map[string]string{}
)

// Set installs an in-process override for key. Overrides take
// precedence over environment variables.
func Set(key, value string) {
	mu.Lock()
	defer mu.Unlock()
	overrides[key] = value
}

// Unset removes the in-process override for key, if any.
func Unset(key string) {
	mu.Lock()
	defer mu.Unlock()
	delete(overrides, key)
}

// Lookup returns the configured value for key, or "" if not set.
func Lookup(key string) string {
	mu.RLock()
	v, ok := overrides[key]
	mu.RUnlock()
	if ok {
		return v
	}
	return os.Getenv(key)
}
