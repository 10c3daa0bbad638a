package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnv returns the environment variable value for key, or def if unset or empty.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt returns the environment variable value for key parsed as int, or def if unset or invalid.
func GetEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

// GetEnvDuration returns the environment variable value for key parsed as time.Duration, or def if unset or invalid.
func GetEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return def
}

// GetEnvTime returns the environment variable value for key parsed as HH:MM, or
// defaultTime if unset or invalid. Only the time-of-day portion is meaningful.
func GetEnvTime(key, defaultTime string) time.Time {
	value := os.Getenv(key)
	if value == "" {
		value = defaultTime
	}

	t, err := time.Parse("15:04", value)
	if err != nil {
		t, _ = time.Parse("15:04", defaultTime)
	}

	return t
}

// GetEnvList returns the environment variable value for key split on commas with
// whitespace trimmed, or nil if unset or empty.
func GetEnvList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	var out []string
	for _, p := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
