package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok && val != "" {
		return val
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asInt
}

// GetBool accepts the forms understood by strconv.ParseBool.
func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// GetDuration reads an integer count of unit, e.g.
// GetDuration(c, "QUERY_CACHE_SECONDS", time.Second, 5*time.Minute).
// A value with its own unit suffix ("90s", "5m") is parsed as is.
func GetDuration(config map[string]string, key string, unit time.Duration, defaultValue time.Duration) time.Duration {
	s, ok := config[key]
	if !ok || strings.TrimSpace(s) == "" {
		return defaultValue
	}
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * unit
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return defaultValue
}
