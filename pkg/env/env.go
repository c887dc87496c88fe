// Package env reads process environment variables for the few settings that
// live outside the envconfig-backed configuration, such as log formatting.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
