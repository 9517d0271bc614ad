// Package config handles runtime configuration for the server,
// built from defaults overlaid with environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/setops/psigate/internal/server/psi"
)

// Config holds runtime settings for the PSI gateway server.
//
// Fields:
//   - Addr: bind address for the HTTP endpoint.
//   - DatabasePath: SQLite database file path.
//   - ServerSetPath: line-delimited server item set, read once at startup.
//   - EngineCommand: path to the external PSI helper binary.
//   - PSI: process-lifetime engine settings (reveal mode, container mode,
//     false-positive rate). Changing them requires a restart.
//   - TokenTTL: absolute session token lifetime.
//   - LoginRateLimit / LoginRateWindow: token-bucket limit on the login
//     endpoint.
type Config struct {
	Addr            string
	DatabasePath    string
	ServerSetPath   string
	EngineCommand   string
	PSI             psi.Config
	TokenTTL        time.Duration
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8000"
	c.DatabasePath = "data/psigate.db"
	c.ServerSetPath = "data/server_items.txt"
	c.EngineCommand = "psi-helper"
	c.PSI = psi.Config{
		Reveal:            psi.RevealElements,
		Container:         psi.ContainerRaw,
		FalsePositiveRate: 1e-9,
	}
	c.TokenTTL = 24 * time.Hour
	c.LoginRateLimit = 10
	c.LoginRateWindow = time.Minute
}

// Load builds a Config by applying defaults and then overlaying recognized
// environment variables:
//
//	PSIGATE_ADDR         bind address (e.g. ":8000")
//	PSIGATE_DB           SQLite database path
//	PSIGATE_TOKEN_TTL    session token lifetime (Go duration, e.g. "24h")
//	SERVER_SET_PATH      server item set file
//	PSI_ENGINE_CMD       PSI helper binary
//	PSI_REVEAL           "elements" or "size"
//	PSI_CONTAINER        "raw", "compressed" or "probabilistic"
//	PSI_FPR              false-positive rate (positive float; meaningful
//	                     for the probabilistic container mode)
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v := os.Getenv("PSIGATE_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("PSIGATE_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SERVER_SET_PATH"); v != "" {
		cfg.ServerSetPath = v
	}
	if v := os.Getenv("PSI_ENGINE_CMD"); v != "" {
		cfg.EngineCommand = v
	}
	if v := os.Getenv("PSI_REVEAL"); v != "" {
		cfg.PSI.Reveal = psi.RevealMode(v)
	}
	if v := os.Getenv("PSI_CONTAINER"); v != "" {
		cfg.PSI.Container = psi.ContainerMode(v)
	}
	if v := os.Getenv("PSI_FPR"); v != "" {
		fpr, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid PSI_FPR %q: %w", v, err)
		}
		cfg.PSI.FalsePositiveRate = fpr
	}
	if v := os.Getenv("PSIGATE_TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PSIGATE_TOKEN_TTL %q: %w", v, err)
		}
		cfg.TokenTTL = ttl
	}

	if err := cfg.PSI.Validate(); err != nil {
		return nil, err
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}
