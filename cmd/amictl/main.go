package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/medularis/go-asterisk/internal/logging"
	"github.com/medularis/go-asterisk/manager"
	"github.com/medularis/go-asterisk/protocol"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "amictl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: amictl [-config path] <command> [args]

commands:
  ping                     check manager responsiveness
  status [channel]         channel status report
  command <cli command>    run an Asterisk CLI command
  hangup <channel>         hang up a channel
  originate <channel> <exten> [context]
  watch [event ...]        print events until interrupted (no names = all)
`)
}

func run() error {
	configPath := flag.String("config", "amictl.toml", "path to amictl TOML config")
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	cfg, err := loadClientConfig(*configPath)
	if err != nil {
		return err
	}
	logger := logging.NewLogger("amictl")

	m := manager.New(manager.Config{
		DialTimeout: cfg.DialTimeout,
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
	logger.Info().Str("title", m.Title()).Str("version", m.Version()).Msg("connected")

	if _, err := m.Login(cfg.Username, cfg.Secret); err != nil {
		return err
	}

	switch args[0] {
	case "ping":
		return printResponse(m.Ping())
	case "status":
		channel := ""
		if len(args) > 1 {
			channel = args[1]
		}
		return printResponse(m.Status(channel))
	case "command":
		if len(args) < 2 {
			return fmt.Errorf("command requires a CLI command argument")
		}
		resp, err := m.Command(args[1])
		if err != nil {
			return err
		}
		fmt.Print(resp.Data)
		return nil
	case "hangup":
		if len(args) < 2 {
			return fmt.Errorf("hangup requires a channel argument")
		}
		return printResponse(m.Hangup(args[1]))
	case "originate":
		if len(args) < 3 {
			return fmt.Errorf("originate requires channel and exten arguments")
		}
		req := manager.OriginateRequest{Channel: args[1], Exten: args[2]}
		if len(args) > 3 {
			req.Context = args[3]
		}
		return printResponse(m.Originate(req))
	case "watch":
		return watch(m, args[1:], logger)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printResponse(resp *protocol.Message, err error) error {
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s: %s\n", k, resp.Headers[k])
	}
	if resp.Data != "" {
		fmt.Print(resp.Data)
	}
	return nil
}

// watch streams events to stdout until SIGINT/SIGTERM.
func watch(m *manager.Manager, names []string, logger zerolog.Logger) error {
	printer := func(ev *protocol.Event, _ *manager.Manager) bool {
		fmt.Printf("-- %s --\n", ev.Name)
		keys := make([]string, 0, len(ev.Headers))
		for k := range ev.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s: %s\n", k, ev.Headers[k])
		}
		fmt.Println()
		return false
	}
	if len(names) == 0 {
		m.RegisterEvent(manager.Wildcard, printer)
	} else {
		for _, name := range names {
			m.RegisterEvent(name, printer)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		logger.Info().Str("signal", sig.String()).Msg("stopping")
		return nil
	case err := <-m.Errors():
		return err
	}
}
