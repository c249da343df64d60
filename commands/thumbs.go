package commands

import (
	"context"

	"github.com/urfave/cli"

	"atelier/config"
	"atelier/thumbs"
)

// ThumbsCommand registers the thumbs cli command.
var ThumbsCommand = cli.Command{
	Name:   "thumbs",
	Usage:  "Creates medium-size copies of new artworks and archives the originals",
	Action: thumbsAction,
}

func thumbsAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, cancel := signalContext()
	defer cancel()

	_, err = generateThumbs(c, cfg)
	return err
}

func generateThumbs(ctx context.Context, cfg *config.Config) (*thumbs.Report, error) {
	return thumbs.NewGenerator(thumbs.OptionsFromConfig(cfg)).Run(ctx)
}
