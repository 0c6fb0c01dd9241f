package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// amictl config.toml key mapping to client settings.
type fileConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Username      string `toml:"username"`
	Secret        string `toml:"secret"`
	DialTimeoutMS int    `toml:"dial_timeout_ms"`
}

type clientConfig struct {
	Host        string
	Port        int
	Username    string
	Secret      string
	DialTimeout time.Duration
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		Host:        "localhost",
		Port:        5038,
		DialTimeout: 10 * time.Second,
	}
}

// loadClientConfig loads TOML config with a default overlay.
func loadClientConfig(path string) (clientConfig, error) {
	cfg := defaultClientConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return clientConfig{}, fmt.Errorf("load amictl config: %w", err)
	}

	if meta.IsDefined("host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("username") {
		cfg.Username = strings.TrimSpace(raw.Username)
	}
	if meta.IsDefined("secret") {
		cfg.Secret = raw.Secret
	}
	if meta.IsDefined("dial_timeout_ms") {
		cfg.DialTimeout = time.Duration(raw.DialTimeoutMS) * time.Millisecond
	}

	if cfg.Host == "" {
		return clientConfig{}, fmt.Errorf("load amictl config: host must not be empty")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return clientConfig{}, fmt.Errorf("load amictl config: invalid port %d", cfg.Port)
	}
	if cfg.Username == "" {
		return clientConfig{}, fmt.Errorf("load amictl config: username must not be empty")
	}
	return cfg, nil
}
