package env

import "os"

// Get reads an environment variable with a fallback. It exists for the
// few reads that happen before envconfig has parsed the full config.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
