// Package thumbs derives web-sized artwork images from the originals: the
// originals are archived and a square medium JPEG is written for each.
package thumbs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/h2non/filetype"

	"atelier/config"
	"atelier/event"
)

var log = event.Log

// ErrNoImages is returned when neither the source directory nor the
// archive holds any image.
var ErrNoImages = errors.New("no images found")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsImageName reports whether a file name has a supported image extension.
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Options configure a generator run.
type Options struct {
	SourceDir    string
	OriginalsDir string
	MediumDir    string
	Size         int
	Quality      int
}

// OptionsFromConfig maps the images section of the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SourceDir:    cfg.ArtworkPath(),
		OriginalsDir: cfg.OriginalsPath(),
		MediumDir:    cfg.MediumPath(),
		Size:         cfg.Images.MediumSize,
		Quality:      cfg.Images.JPEGQuality,
	}
}

// Result is the outcome for one image.
type Result struct {
	Name      string
	Moved     bool
	Generated bool
	Skipped   bool
	Bytes     int64
	Err       error
}

// Report summarises a run.
type Report struct {
	Results   []Result
	Generated int
	Skipped   int
	Failed    int
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch {
	case res.Err != nil:
		r.Failed++
	case res.Generated:
		r.Generated++
	case res.Skipped:
		r.Skipped++
	}
}

// Processed is the number of images looked at.
func (r *Report) Processed() int {
	return len(r.Results)
}

// Generator produces medium derivatives.
type Generator struct {
	opts  Options
	mover *Mover
}

// NewGenerator creates a generator.
func NewGenerator(opts Options) *Generator {
	if opts.Size <= 0 {
		opts.Size = 800
	}
	if opts.Quality <= 0 {
		opts.Quality = 85
	}
	return &Generator{
		opts:  opts,
		mover: NewMover(opts.SourceDir, opts.OriginalsDir),
	}
}

// MediumPath returns the derivative path for an original file name.
func (g *Generator) MediumPath(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(g.opts.MediumDir, stem+".jpg")
}

// Run processes every image one after the other. Setup problems and an
// empty source abort the run with an error; failures on single images are
// logged and recorded in the report.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	for _, dir := range []string{g.opts.OriginalsDir, g.opts.MediumDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	names, err := g.scan()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, g.opts.SourceDir)
	}

	log.Infof("thumbs: found %s to process", english.Plural(len(names), "image", "images"))

	report := &Report{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := g.process(name)
		report.add(res)

		if res.Err != nil {
			event.Publish("thumbs.failed", event.Data{"name": name, "error": res.Err.Error()})
		} else if res.Generated {
			event.Publish("thumbs.generated", event.Data{"name": name, "bytes": res.Bytes})
		}
	}

	log.Infof("thumbs: processed %s, %d generated, %d skipped, %d failed",
		english.Plural(report.Processed(), "image", "images"),
		report.Generated, report.Skipped, report.Failed)

	return report, nil
}

// scan lists image names from the source directory and the archive, so
// that originals archived by an interrupted run are picked up again.
func (g *Generator) scan() ([]string, error) {
	seen := map[string]bool{}

	for i, dir := range []string{g.opts.SourceDir, g.opts.OriginalsDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if i > 0 && os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, e := range entries {
			if !IsImageName(e.Name()) {
				continue
			}
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[e.Name()] = true
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	g.warnCollisions(names)
	return names, nil
}

// warnCollisions reports names sharing a derivative: a.jpg and a.png both
// map to medium/a.jpg, so only the first one processed gets its own.
func (g *Generator) warnCollisions(names []string) []string {
	owner := map[string]string{}
	var shadowed []string
	for _, name := range names {
		out := g.MediumPath(name)
		if first, ok := owner[out]; ok {
			log.Warnf("thumbs: %s and %s share the derivative %s, %s will be skipped",
				first, name, filepath.Base(out), name)
			shadowed = append(shadowed, name)
			continue
		}
		owner[out] = name
	}
	return shadowed
}

func (g *Generator) process(name string) Result {
	res := Result{Name: name}
	log.Debugf("thumbs: processing %s", name)

	moved, err := g.mover.Archive(name)
	if err != nil {
		if _, statErr := os.Stat(g.mover.ArchivedPath(name)); statErr != nil {
			res.Err = err
			log.Errorf("thumbs: %s: %s", name, err)
			return res
		}
	}
	res.Moved = moved
	if moved {
		log.Infof("thumbs: moved %s to %s", name, g.opts.OriginalsDir)
	}

	out := g.MediumPath(name)
	if _, err := os.Stat(out); err == nil {
		res.Skipped = true
		log.Infof("thumbs: medium thumbnail for %s already exists, skipping", name)
		return res
	}

	size, err := g.resize(g.mover.ArchivedPath(name), out)
	if err != nil {
		res.Err = err
		log.Errorf("thumbs: failed to generate medium thumbnail for %s: %s", name, err)
		return res
	}

	res.Generated = true
	res.Bytes = size
	log.Infof("thumbs: generated medium thumbnail for %s (%s)", name, humanize.Bytes(uint64(size)))
	return res
}

// resize writes a square, centre-cropped JPEG of src to dst. The file is
// written under a temporary name first so an interrupted run never leaves
// a truncated derivative behind.
func (g *Generator) resize(src, dst string) (int64, error) {
	kind, err := filetype.MatchFile(src)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", src, err)
	}
	if kind.MIME.Value != "image/jpeg" && kind.MIME.Value != "image/png" {
		return 0, fmt.Errorf("%s is not a JPEG or PNG image", filepath.Base(src))
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return 0, fmt.Errorf("failed to decode: %w", err)
	}

	thumb := imaging.Fill(img, g.opts.Size, g.opts.Size, imaging.Center, imaging.Lanczos)

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, thumb, imaging.JPEG, imaging.JPEGQuality(g.opts.Quality)); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
