package commands

import (
	"github.com/urfave/cli"

	"atelier/server"
)

// ServeCommand registers the serve cli command.
var ServeCommand = cli.Command{
	Name:   "serve",
	Usage:  "Serves the site locally for previewing",
	Flags:  serveFlags,
	Action: serveAction,
}

var serveFlags = []cli.Flag{
	cli.IntFlag{
		Name:  "port, p",
		Usage: "HTTP port, overrides server.port",
	},
	cli.BoolFlag{
		Name:  "build, b",
		Usage: "build the site before serving",
	},
}

func serveAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if p := ctx.Int("port"); p > 0 {
		cfg.Server.Port = p
	}

	c, cancel := signalContext()
	defer cancel()

	if ctx.Bool("build") {
		if _, err := buildSite(c, cfg); err != nil {
			return err
		}
	}

	return server.NewServer(cfg).Start(c)
}
