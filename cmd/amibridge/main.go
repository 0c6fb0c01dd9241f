package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/medularis/go-asterisk/internal/bridge"
	"github.com/medularis/go-asterisk/internal/logging"
	"github.com/medularis/go-asterisk/manager"
	"github.com/medularis/go-asterisk/protocol"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "amibridge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "amibridge.toml", "path to amibridge TOML config")
	flag.Parse()

	cfg, err := loadBridgeConfig(*configPath)
	if err != nil {
		return err
	}
	logger := logging.NewLogger("amibridge")

	m := manager.New(manager.Config{
		DialTimeout: cfg.dialTimeout(),
		Logger:      &logger,
	})
	if _, err := m.Connect(cfg.Host, cfg.Port); err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn().Err(err).Msg("close failed")
		}
	}()
	if _, err := m.Login(cfg.Username, cfg.Secret); err != nil {
		return err
	}
	logger.Info().
		Str("title", m.Title()).
		Str("version", m.Version()).
		Str("peer", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)).
		Msg("manager session up")

	srv := bridge.New(bridge.Config{
		CorsOrigins: cfg.CorsOrigins,
		EventBuffer: cfg.EventBuffer,
		ActionToken: cfg.ActionToken,
	}, m, logger)

	m.RegisterEvent(manager.Wildcard, func(ev *protocol.Event, _ *manager.Manager) bool {
		srv.Observe(ev)
		return false
	})
	go func() {
		for err := range m.Errors() {
			logger.Error().Err(err).Msg("manager session error")
		}
	}()

	logger.Info().Str("addr", cfg.Addr).Msg("serving")
	return srv.Run(cfg.Addr)
}
