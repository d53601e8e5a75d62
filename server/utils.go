package server

import (
	"net/http"
	"os"
	"strconv"
)

// parseIntQuery reads an integer query parameter, returning def when the
// parameter is absent or malformed.
func parseIntQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// parseInt64Query reads an int64 query parameter, returning def when the
// parameter is absent or malformed.
func parseInt64Query(r *http.Request, key string, def int64) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}

// getEnvInt reads an integer environment variable with a fallback default.
func getEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
