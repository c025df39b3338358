package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ironsheep/stego-tools-mcp/internal/config"
	"github.com/ironsheep/stego-tools-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath, logLevel string
	var showVersion bool

	flags := pflag.NewFlagSet("stego-tools-mcp", pflag.ContinueOnError)
	flags.StringVarP(&configPath, "config", "c", "", "YAML config file (default $"+config.EnvConfig+")")
	flags.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	flags.BoolVarP(&showVersion, "version", "v", false, "print version information")
	flags.Usage = func() { printHelp(flags) }

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flags.Arg(0))
	}

	if showVersion {
		fmt.Printf("stego-tools-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// Logs go to stderr; stdout is for MCP protocol.
	logger := cfg.Logger()
	logger.Debug("starting",
		"version", Version,
		"build_time", BuildTime,
		"commit", GitCommit,
		"bits_per_channel", cfg.BitsPerChannel,
		"scale", cfg.Scale,
		"filter", cfg.Filter)

	server.Version = Version
	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func printHelp(flags *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `stego-tools-mcp - MCP server for LSB steganography

Usage: stego-tools-mcp [options]

Options:
%s
Environment variables:
  %-24s config file
  %-24s log level
  %-24s default bits per channel (1-4)
  %-24s default cover scale (>= 1)
  %-24s default resampling filter
  %-24s default output format (png, bmp, tiff)
  %-24s directory for stego images

This server communicates via MCP protocol over stdin/stdout.
Register it with your MCP client as a stdio server.
`, flags.FlagUsages(),
		config.EnvConfig, config.EnvLogLevel, config.EnvBits, config.EnvScale,
		config.EnvFilter, config.EnvOutputFormat, config.EnvOutputDir)
}
