package env

import "os"

// Get reads an environment variable, treating an empty value the same
// as an unset one so that `VAR=` in a .env file falls through to the
// fallback.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
