package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"atelier/event"
	"atelier/notify"
	"atelier/server"
	"atelier/thumbs"
	"atelier/watcher"
)

// WatchCommand registers the watch cli command.
var WatchCommand = cli.Command{
	Name:   "watch",
	Usage:  "Rebuilds the site when sources or artworks change and serves it",
	Flags:  watchFlags,
	Action: watchAction,
}

var watchFlags = []cli.Flag{
	cli.BoolFlag{
		Name:  "no-serve",
		Usage: "only rebuild, do not start the preview server",
	},
}

func watchAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	c, cancel := signalContext()
	defer cancel()

	if _, err := generateThumbs(c, cfg); err != nil && !errors.Is(err, thumbs.ErrNoImages) {
		return err
	}
	if _, err := buildSite(c, cfg); err != nil {
		log.Errorf("initial build failed: %s", err)
	}

	w, err := watcher.NewWatcher(cfg)
	if err != nil {
		return err
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(c)

	// thumbnail failures and deploys are pushed to ntfy as they happen
	sub := event.Subscribe(notify.Topics...)
	defer event.Unsubscribe(sub)
	g.Go(func() error {
		notify.NewNtfySender(cfg).Listen(gctx, sub)
		return nil
	})

	summary := event.Subscribe("thumbs.generated", "thumbs.failed", "site.built")
	defer event.Unsubscribe(summary)

	if !ctx.Bool("no-serve") {
		g.Go(func() error {
			return server.NewServer(cfg).Start(gctx)
		})
	}

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-w.Events():
				log.Infof("📄 %s %s: %s", ev.Kind, ev.Type, ev.FilePath)

				if ev.Kind == watcher.KindArtwork && ev.Type != watcher.EventDeleted {
					if _, err := generateThumbs(gctx, cfg); err != nil && !errors.Is(err, thumbs.ErrNoImages) {
						log.Errorf("thumbnails failed: %s", err)
					}
				}

				if _, err := buildSite(gctx, cfg); err != nil {
					log.Errorf("rebuild failed: %s", err)
				}
				log.Info(rebuildSummary(summary))
			}
		}
	})

	log.Info("watching for changes, press Ctrl+C to stop")

	return g.Wait()
}

// rebuildSummary drains the queued progress events of one rebuild into a
// single log line.
func rebuildSummary(sub event.Subscription) string {
	var generated, failed, pages int
	built := false

drain:
	for {
		select {
		case msg, ok := <-sub.Receiver:
			if !ok {
				break drain
			}
			switch msg.Name {
			case "thumbs.generated":
				generated++
			case "thumbs.failed":
				failed++
			case "site.built":
				built = true
				if n, ok := msg.Fields["pages"].(int); ok {
					pages = n
				}
			}
		default:
			break drain
		}
	}

	thumbnails := english.Plural(generated, "thumbnail", "thumbnails")
	if !built {
		return fmt.Sprintf("rebuild incomplete: %s generated, %d failed", thumbnails, failed)
	}
	return fmt.Sprintf("rebuilt %s, %s generated, %d failed",
		english.Plural(pages, "page", "pages"), thumbnails, failed)
}
