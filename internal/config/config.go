// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variable names.
const (
	EnvLogLevel       = "IMAGE_ENHANCER_LOG_LEVEL"
	EnvAddr           = "IMAGE_ENHANCER_ADDR"
	EnvPort           = "PORT"
	EnvMaxBodyMB      = "IMAGE_ENHANCER_MAX_BODY_MB"
	EnvAllowedOrigins = "IMAGE_ENHANCER_ALLOWED_ORIGINS"
	EnvTimeout        = "IMAGE_ENHANCER_TIMEOUT"
)

// Defaults applied when a variable is unset or empty.
const (
	DefaultAddr      = "127.0.0.1:5000"
	DefaultMaxBodyMB = 25
	DefaultTimeout   = 60 * time.Second
	DefaultLogLevel  = "info"
)

// Config holds the settings shared by all front ends.
type Config struct {
	LogLevel       string
	Addr           string
	MaxBodyBytes   int64
	AllowedOrigins []string
	Timeout        time.Duration
}

// Load reads Config from the process environment.
func Load() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads Config through lookup, which has the signature of
// os.LookupEnv. Invalid values are reported rather than silently defaulted.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		LogLevel:       DefaultLogLevel,
		Addr:           DefaultAddr,
		MaxBodyBytes:   DefaultMaxBodyMB << 20,
		AllowedOrigins: []string{"*"},
		Timeout:        DefaultTimeout,
	}

	if v := get(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := get(EnvAddr); v != "" {
		cfg.Addr = v
	} else if port := get(EnvPort); port != "" {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return nil, fmt.Errorf("%s: invalid port %q", EnvPort, port)
		}
		cfg.Addr = ":" + port
	}

	if v := get(EnvMaxBodyMB); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return nil, fmt.Errorf("%s: must be a positive integer, got %q", EnvMaxBodyMB, v)
		}
		cfg.MaxBodyBytes = int64(mb) << 20
	}

	if v := get(EnvAllowedOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}

	if v := get(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s: must be a positive duration, got %q", EnvTimeout, v)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// OriginAllowed reports whether a CORS origin may access the API.
func (c *Config) OriginAllowed(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}
