package configuration

import (
	"os"
	"strconv"
	"strings"
)

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	// Environment variable takes precedence when provided
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return defaultValue
	}
	return b
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// splitFeeds splits a pipe-separated CONTENT_FEEDS value, dropping blanks.
func splitFeeds(v string) []string {
	var feeds []string
	for _, f := range strings.Split(v, "|") {
		if f = strings.TrimSpace(f); f != "" {
			feeds = append(feeds, f)
		}
	}
	return feeds
}
