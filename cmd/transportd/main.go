// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/transportd/lib/bytecache"
	"github.com/bureau-foundation/transportd/lib/config"
	"github.com/bureau-foundation/transportd/lib/daemon"
	"github.com/bureau-foundation/transportd/lib/eventlog"
	"github.com/bureau-foundation/transportd/lib/process"
	"github.com/bureau-foundation/transportd/lib/sampler"
	"github.com/bureau-foundation/transportd/lib/version"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

// options holds the parsed command line.
type options struct {
	configPath  string
	address     string
	logLevel    string
	showVersion bool
	noSampler   bool
}

// parseFlags parses args. Returns pflag.ErrHelp after printing usage
// when --help is given.
func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("transportd", pflag.ContinueOnError)
	flags.SetOutput(output)
	flags.StringVar(&opts.configPath, "config", "", "path to the daemon config file (default: $"+config.EnvVar+")")
	flags.StringVar(&opts.address, "address", "", "listen address: unix:/path, /path, tcp:host:port, or host:port")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flags.BoolVar(&opts.noSampler, "no-sampler", false, "do not start the host sampler")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if flags.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	return opts, nil
}

// loadConfig resolves the config file from the flag or the
// environment, falling back to defaults, and applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
		cfg.Finalize()
	}
	if err != nil {
		return nil, err
	}

	if opts.address != "" {
		cfg.Server.Address = opts.address
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.noSampler {
		cfg.Sampler.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args, stdout)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.showVersion {
		version.Print(stdout, "transportd")
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	// Validate has already checked the name.
	compression, _ := bytecache.ParseCompression(cfg.Cache.Compression)

	transportDaemon, err := daemon.New(daemon.Config{
		EventLog: eventlog.Config{
			EventCapacity:  cfg.EventLog.EventCapacity,
			GroupCapacity:  cfg.EventLog.GroupCapacity,
			MemberCapacity: cfg.EventLog.MemberCapacity,
		},
		Cache: bytecache.Config{
			Capacity:    cfg.Cache.Capacity,
			Compression: compression,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	if cfg.Sampler.Enabled {
		interval, err := cfg.SamplerInterval()
		if err != nil {
			return err
		}
		transportDaemon.RegisterComponent(sampler.New(transportDaemon, sampler.Config{
			Interval: interval,
			Logger:   logger.With("component", "sampler"),
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("transportd starting",
		"version", version.Info(),
		"environment", string(cfg.Environment),
		"address", cfg.Server.Address,
		"event_capacity", cfg.EventLog.EventCapacity,
		"group_capacity", cfg.EventLog.GroupCapacity,
		"sampler", cfg.Sampler.Enabled,
	)

	return transportDaemon.RunServer(ctx, cfg.Server.Address)
}
