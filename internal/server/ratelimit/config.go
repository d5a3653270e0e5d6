package ratelimit

import (
	"strings"
	"time"
)

// Defaults applied when Settings leaves a field unset.
const (
	DefaultLimit           = 600
	DefaultWindow          = time.Minute
	DefaultScanLimit       = 10
	DefaultCleanupInterval = 5 * time.Minute
	DefaultIdleTTL         = time.Hour
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Settings is the user-facing rate limit configuration, loaded with the rest
// of the application config.
type Settings struct {
	Enabled     bool     `yaml:"enabled" mapstructure:"enabled"`
	Limit       int      `yaml:"limit" mapstructure:"limit"`
	WindowSecs  int      `yaml:"window_secs" mapstructure:"window_secs"`
	ScanPerHour int      `yaml:"scan_per_hour" mapstructure:"scan_per_hour"`
	Whitelist   []string `yaml:"whitelist" mapstructure:"whitelist"`
	Blacklist   []string `yaml:"blacklist" mapstructure:"blacklist"`
}

// NewConfig builds a limiter Config from Settings.
func NewConfig(s Settings) *Config {
	if !s.Enabled {
		return &Config{Enabled: false}
	}

	limit := s.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	window := time.Duration(s.WindowSecs) * time.Second
	if window <= 0 {
		window = DefaultWindow
	}
	scan := s.ScanPerHour
	if scan <= 0 {
		scan = DefaultScanLimit
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    limit,
		DefaultWindow:   window,
		CleanupInterval: DefaultCleanupInterval,
		IdleTTL:         DefaultIdleTTL,
		Whitelist:       ipSet(s.Whitelist),
		Blacklist:       ipSet(s.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(scan),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits. Scans fetch
// dozens of external pages and are held to scanPerHour.
func DefaultEndpointConfigs(scanPerHour int) []EndpointConfig {
	return []EndpointConfig{
		// Expensive: a scan crawls the directory and company sites
		{Path: "/scan", Method: "POST", Limit: scanPerHour, Window: time.Hour, Burst: 2},

		// Writes: sends, blacklists and draft edits
		{Path: "/companies/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/companies/", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 10},

		// Reads fall through to the default limit; health and metrics are unlimited
	}
}

func ipSet(ips []string) map[string]bool {
	result := make(map[string]bool, len(ips))
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
