// Package config loads and validates TOML configuration for the mock DREAM
// server daemon.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ServerConfig configures the mock DREAM server and its admin surface.
// Intervals and durations are expressed in seconds so operators can use
// fractional values; defaults match the instrument contract.
type ServerConfig struct {
	Name        string   `toml:"name"`
	Addr        string   `toml:"addr"`
	AdminAddr   string   `toml:"admin_addr"`
	CorsOrigins []string `toml:"cors_origins"`

	StatusIntervalSeconds      float64 `toml:"status_interval_seconds"`
	DataProductIntervalSeconds float64 `toml:"data_product_interval_seconds"`
	RoofDurationSeconds        float64 `toml:"roof_duration_seconds"`
	StopDurationSeconds        float64 `toml:"stop_duration_seconds"`
}

func LoadServerConfig(path string) (ServerConfig, error) {
	var cfg ServerConfig
	if err := loadToml(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	cfg = cfg.WithDefaults()
	if err := ValidateServerConfig(cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// DefaultServerConfig returns the contract-aligned server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:                       "mock-dream",
		Addr:                       ":5000",
		AdminAddr:                  ":9000",
		StatusIntervalSeconds:      5,
		DataProductIntervalSeconds: 7,
		RoofDurationSeconds:        4,
		StopDurationSeconds:        1,
	}
}

// WithDefaults fills empty fields from DefaultServerConfig.
func (c ServerConfig) WithDefaults() ServerConfig {
	def := DefaultServerConfig()
	if strings.TrimSpace(c.Name) == "" {
		c.Name = def.Name
	}
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = def.Addr
	}
	if strings.TrimSpace(c.AdminAddr) == "" {
		c.AdminAddr = def.AdminAddr
	}
	if c.StatusIntervalSeconds == 0 {
		c.StatusIntervalSeconds = def.StatusIntervalSeconds
	}
	if c.DataProductIntervalSeconds == 0 {
		c.DataProductIntervalSeconds = def.DataProductIntervalSeconds
	}
	if c.RoofDurationSeconds == 0 {
		c.RoofDurationSeconds = def.RoofDurationSeconds
	}
	if c.StopDurationSeconds == 0 {
		c.StopDurationSeconds = def.StopDurationSeconds
	}
	return c
}

func ValidateServerConfig(cfg ServerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("server config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("server config missing addr")
	}
	if cfg.StatusIntervalSeconds <= 0 {
		return fmt.Errorf("server config status_interval_seconds must be positive")
	}
	if cfg.DataProductIntervalSeconds <= 0 {
		return fmt.Errorf("server config data_product_interval_seconds must be positive")
	}
	if cfg.RoofDurationSeconds < 0 {
		return fmt.Errorf("server config roof_duration_seconds must not be negative")
	}
	if cfg.StopDurationSeconds < 0 {
		return fmt.Errorf("server config stop_duration_seconds must not be negative")
	}
	return nil
}

func (c ServerConfig) StatusInterval() time.Duration {
	return secondsToDuration(c.StatusIntervalSeconds)
}

func (c ServerConfig) DataProductInterval() time.Duration {
	return secondsToDuration(c.DataProductIntervalSeconds)
}

func (c ServerConfig) RoofDuration() time.Duration {
	return secondsToDuration(c.RoofDurationSeconds)
}

func (c ServerConfig) StopDuration() time.Duration {
	return secondsToDuration(c.StopDurationSeconds)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
