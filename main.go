package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"atelier/commands"
	"atelier/event"
)

var version = "development"
var log = event.Log

func main() {
	app := cli.NewApp()
	app.Name = "atelier"
	app.HelpName = filepath.Base(os.Args[0])
	app.Usage = "Builds and publishes an artist portfolio"
	app.Version = version
	app.EnableBashCompletion = true
	app.Flags = commands.GlobalFlags

	app.Commands = []cli.Command{
		commands.BuildCommand,
		commands.ThumbsCommand,
		commands.ServeCommand,
		commands.WatchCommand,
		commands.DeployCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
