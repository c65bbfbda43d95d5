// Package env reads the handful of process variables that live outside the
// envconfig-managed MANGO_* namespace, like PORT and LOG_FORMAT.
package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
