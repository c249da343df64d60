package commands

import (
	"github.com/urfave/cli"

	"atelier/deployer"
	"atelier/event"
	"atelier/notify"
)

// DeployCommand registers the deploy cli command.
var DeployCommand = cli.Command{
	Name:   "deploy",
	Usage:  "Builds the site and publishes it with the configured method",
	Flags:  deployFlags,
	Action: deployAction,
}

var deployFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "method, m",
		Usage: "rsync, s3 or none, overrides deploy.method",
	},
	cli.BoolFlag{
		Name:  "skip-build",
		Usage: "publish the existing public directory as is",
	},
}

func deployAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if m := ctx.String("method"); m != "" {
		cfg.Deploy.Method = m
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	c, cancel := signalContext()
	defer cancel()

	ntfy := notify.NewNtfySender(cfg)

	if !ctx.Bool("skip-build") {
		if _, err := buildSite(c, cfg); err != nil {
			_ = ntfy.SendFailure(c, "build", err)
			return err
		}
	}

	sub := event.Subscribe(notify.Topics...)
	defer event.Unsubscribe(sub)

	if err := deployer.NewDeployer(cfg).Deploy(c, cfg.PublicPath()); err != nil {
		_ = ntfy.SendFailure(c, "deploy", err)
		return err
	}

	ntfy.Flush(c, sub)
	return nil
}
