// Command thumbnails creates medium-size copies of the artworks using the
// default site layout. It exits non-zero when nothing could be processed.
package main

import (
	"context"
	"os"
	"os/signal"

	"atelier/config"
	"atelier/event"
	"atelier/thumbs"
)

var log = event.Log

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	opts := thumbs.OptionsFromConfig(config.Default())

	report, err := thumbs.NewGenerator(opts).Run(ctx)
	if err != nil {
		log.Errorf("thumbnail generation failed: %s", err)
		cancel()
		os.Exit(1)
	}

	log.Infof("🖼  %d medium images ready in %s", report.Generated+report.Skipped, opts.MediumDir)
}
