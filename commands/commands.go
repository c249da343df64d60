/*
Package commands provides the atelier CLI commands.

Each command loads the configuration named by the global --config flag,
applies the log level and then drives one of the site packages.
*/
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"atelier/builder"
	"atelier/config"
	"atelier/event"
)

var log = event.Log

// GlobalFlags are accepted by every command.
var GlobalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config, c",
		Usage:  "config file `FILENAME`",
		Value:  "atelier.yaml",
		EnvVar: "ATELIER_CONFIG",
	},
	cli.StringFlag{
		Name:   "log-level, l",
		Usage:  "trace, debug, info, warning or error",
		EnvVar: "ATELIER_LOG_LEVEL",
	},
}

// loadConfig reads the config file and applies the log level. The flag
// wins over the file.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if l := ctx.GlobalString("log-level"); l != "" {
		level = l
	}
	if err := event.SetLevel(level); err != nil {
		return nil, err
	}

	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildSite runs one complete build with a fresh loader so that changed
// fragments and catalog entries are picked up.
func buildSite(ctx context.Context, cfg *config.Config) (*builder.Summary, error) {
	return builder.NewBuilder(cfg, builder.NewLoader(cfg)).Build(ctx)
}
