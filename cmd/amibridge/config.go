package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type bridgeConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	EventBuffer int      `toml:"event_buffer"`
	ActionToken string   `toml:"action_token"`

	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Username      string `toml:"username"`
	Secret        string `toml:"secret"`
	DialTimeoutMS int    `toml:"dial_timeout_ms"`
}

func (c bridgeConfig) dialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}

func loadBridgeConfig(path string) (bridgeConfig, error) {
	var cfg bridgeConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return bridgeConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return bridgeConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9038"
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 5038
	}
	if cfg.DialTimeoutMS == 0 {
		cfg.DialTimeoutMS = 10_000
	}
	if err := validateBridgeConfig(cfg); err != nil {
		return bridgeConfig{}, err
	}
	return cfg, nil
}

func validateBridgeConfig(cfg bridgeConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("config invalid: port %d out of range", cfg.Port)
	}
	if cfg.Username == "" {
		return fmt.Errorf("config invalid: username is required")
	}
	return nil
}
