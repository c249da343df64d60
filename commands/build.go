package commands

import (
	"github.com/urfave/cli"
)

// BuildCommand registers the build cli command.
var BuildCommand = cli.Command{
	Name:   "build",
	Usage:  "Renders all pages into the public directory",
	Flags:  buildFlags,
	Action: buildAction,
}

var buildFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "strict",
		Usage: "fail when a page keeps unresolved {{placeholders}}",
	},
	cli.BoolFlag{
		Name:  "thumbs, t",
		Usage: "generate medium thumbnails before building",
	},
}

func buildAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if ctx.Bool("strict") {
		cfg.Site.StrictTemplates = true
	}

	c, cancel := signalContext()
	defer cancel()

	if ctx.Bool("thumbs") {
		if _, err := generateThumbs(c, cfg); err != nil {
			return err
		}
	}

	_, err = buildSite(c, cfg)
	return err
}
