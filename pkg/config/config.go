package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Application settings
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Dashboard DashboardConfig
	External  ExternalConfig
}

// Server settings
type ServerConfig struct {
	Port string
}

type DashboardConfig struct {
	PollInterval          time.Duration
	RequestTimeout        time.Duration
	RateLimitPerSecond    int
	DrilldownCloseDelay   time.Duration
	RecentSignupsLimit    int
	DetailSignupsLimit    int
	DiscardStaleResponses bool
}

type ExternalConfig struct {
	// Empty APIURL means same-origin: the service's own proxy route.
	APIURL            string
	BackendURL        string
	ProxyCacheControl string
}

// Logging settings
type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Dashboard: DashboardConfig{
			PollInterval:          getDurationEnv("POLL_INTERVAL", "60s"),
			RequestTimeout:        getDurationEnv("REQUEST_TIMEOUT", "30s"),
			RateLimitPerSecond:    getIntEnv("RATE_LIMIT_PER_SECOND", 10),
			DrilldownCloseDelay:   getDurationEnv("DRILLDOWN_CLOSE_DELAY", "220ms"),
			RecentSignupsLimit:    getIntEnv("RECENT_SIGNUPS_LIMIT", 8),
			DetailSignupsLimit:    getIntEnv("DETAIL_SIGNUPS_LIMIT", 20),
			DiscardStaleResponses: getBoolEnv("DISCARD_STALE_RESPONSES", true),
		},
		External: ExternalConfig{
			APIURL:            getEnv("API_URL", ""),
			BackendURL:        getEnv("BACKEND_URL", ""),
			ProxyCacheControl: getEnv("PROXY_CACHE_CONTROL", "public, max-age=60, stale-while-revalidate"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	// the poll scheduler works in whole seconds
	if config.Dashboard.PollInterval < time.Second {
		return nil, fmt.Errorf("POLL_INTERVAL must be at least 1s, got %s", config.Dashboard.PollInterval)
	}

	return config, nil
}

// APIBase resolves the base URL the fetch client talks to. An empty API_URL
// falls back to this service's own origin, where the proxy route lives.
func (c *Config) APIBase() string {
	base := strings.TrimRight(c.External.APIURL, "/")
	if base == "" {
		return "http://127.0.0.1:" + c.Server.Port
	}
	return base
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
