// Package config loads the process-wide server configuration from a
// JSON file, overlaying whatever keys are present onto built-in
// defaults so a missing or partial config.json still yields a
// runnable server.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RateLimitConfig is the capacity/refill pair for one rate-limited
// action kind, loaded from `rate_limits.<kind>.*`.
type RateLimitConfig struct {
	Capacity        float64 `json:"capacity"`
	RefillPerSecond float64 `json:"refillPerSecond"`
}

// ServerConfig is the server.* group plus the bbs/locale/terminal/
// rate_limits settings the session runtime reads.
type ServerConfig struct {
	Host             string `json:"host"`
	Port             int    `json:"port"`
	MaxConnections   int    `json:"maxConnections"`
	IdleTimeoutSecs  int    `json:"idleTimeoutSecs"`
	GuestTimeoutSecs int    `json:"guestTimeoutSecs"`
	ReadTimeoutSecs  int    `json:"readTimeoutSecs"`
	Timezone         string `json:"timezone"`

	BBSName        string `json:"bbsName"`
	BBSDescription string `json:"bbsDescription"`
	SysOpName      string `json:"sysopName"`

	LocaleLanguage string `json:"localeLanguage"`

	TerminalDefaultProfile string `json:"terminalDefaultProfile"`

	RateLimits map[string]RateLimitConfig `json:"rateLimits"`
}

// defaultServerConfig holds the values used for any key config.json
// doesn't set.
func defaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:             "0.0.0.0",
		Port:             2323,
		MaxConnections:   64,
		IdleTimeoutSecs:  300,
		GuestTimeoutSecs: 120,
		ReadTimeoutSecs:  30,
		Timezone:         "",

		BBSName:        "HOBBS",
		BBSDescription: "A retro bulletin board system",
		SysOpName:      "SysOp",

		LocaleLanguage: "en-US",

		TerminalDefaultProfile: "ansi-80x25",

		RateLimits: map[string]RateLimitConfig{
			"mail.send":   {Capacity: 3, RefillPerSecond: 3.0 / 300},
			"post.create": {Capacity: 5, RefillPerSecond: 5.0 / 300},
		},
	}
}

// Load reads config.json from configPath, overlaying it onto the
// built-in default values; a missing file is not an error.
func Load(configPath string) (ServerConfig, error) {
	filePath := filepath.Join(configPath, "config.json")
	cfg := defaultServerConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("WARN: config.json not found at %s, using defaults", filePath)
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file %s: %w", filePath, err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config JSON from %s: %w", filePath, err)
	}

	log.Printf("INFO: loaded server configuration from %s", filePath)
	return cfg, nil
}

// Save writes cfg back to config.json in configPath.
func Save(configPath string, cfg ServerConfig) error {
	filePath := filepath.Join(configPath, "config.json")
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal server config: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("write config file %s: %w", filePath, err)
	}
	return nil
}

// LoadTimezone resolves cfg's timezone, falling back through the
// HOBBS_TIMEZONE and TZ environment variables, and finally to
// time.Local when nothing resolves.
func LoadTimezone(configTZ string) *time.Location {
	for _, tz := range []string{
		strings.TrimSpace(configTZ),
		strings.TrimSpace(os.Getenv("HOBBS_TIMEZONE")),
		strings.TrimSpace(os.Getenv("TZ")),
	} {
		if tz == "" {
			continue
		}
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
		log.Printf("WARN: invalid timezone %q, trying next source", tz)
	}
	return time.Local
}

// NowIn returns the current time in the server's configured timezone,
// used to render login-success "previous login at" timestamps.
func NowIn(configTZ string) time.Time {
	return time.Now().In(LoadTimezone(configTZ))
}
