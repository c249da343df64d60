// Package builder renders the portfolio into a static site: each page
// shell gets its fragments, grids and behaviour attachments and is written
// to the public directory together with the static assets.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize/english"
	"golang.org/x/sync/errgroup"

	"atelier/config"
	"atelier/event"
	"atelier/gallery"
	"atelier/lazyimg"
	"atelier/loader"
	"atelier/page"
	"atelier/placeholder"
)

var log = event.Log

// Slot ids page shells provide.
const (
	SlotHead        = "head-content"
	SlotHeader      = "header-content"
	SlotFooter      = "footer-content"
	SlotLightbox    = "lightbox-content"
	SlotCollections = "collections-grid"
	SlotGallery     = "gallery-grid"
)

// ErrUnmatchedPlaceholders is returned in strict mode when a rendered page
// still contains {{name}} markers.
var ErrUnmatchedPlaceholders = errors.New("unmatched placeholders")

// Summary describes a finished build.
type Summary struct {
	Pages         int
	LightboxPages int
	Assets        int
	LoadedImages  int
	DeferredImgs  int
	Elapsed       time.Duration
}

// Builder renders the site described by a configuration.
type Builder struct {
	cfg    *config.Config
	loader *loader.Loader

	mu      sync.Mutex
	summary Summary
}

// SourceFor returns where fragments and the catalog are fetched from: the
// remote base URL when configured, the site directory otherwise.
func SourceFor(cfg *config.Config) loader.Source {
	if cfg.Site.RemoteBaseURL != "" {
		return loader.NewHTTPSource(cfg.Site.RemoteBaseURL)
	}
	return loader.FSSource{FS: os.DirFS(cfg.Site.Dir)}
}

// NewLoader creates the loader for a configuration.
func NewLoader(cfg *config.Config) *loader.Loader {
	return loader.New(SourceFor(cfg), loader.Options{
		CatalogPath: cfg.Site.Catalog,
		FragmentDir: cfg.Site.ComponentsDir,
	})
}

// NewBuilder creates a builder. A nil loader is created from cfg.
func NewBuilder(cfg *config.Config, l *loader.Loader) *Builder {
	if l == nil {
		l = NewLoader(cfg)
	}
	return &Builder{cfg: cfg, loader: l}
}

func (b *Builder) defaults() page.Contract {
	return page.Contract{
		Title:       b.cfg.Site.DefaultTitle,
		Description: b.cfg.Site.DefaultDescription,
		Page:        b.cfg.Site.DefaultPage,
	}
}

// Build renders every page shell and copies the static assets.
func (b *Builder) Build(ctx context.Context) (*Summary, error) {
	start := time.Now()
	b.summary = Summary{}

	publicDir := b.cfg.PublicPath()
	if err := os.MkdirAll(publicDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create public directory: %w", err)
	}

	cat := b.loader.LoadCatalog(ctx)
	for _, p := range cat.Check() {
		log.Warnf("catalog: %s", p)
	}

	renderer := gallery.New(cat, gallery.Options{
		ImageBase:    b.cfg.Images.ArtworkDir,
		Variant:      b.cfg.Images.Variant,
		MediumDir:    b.cfg.Images.MediumDir,
		OriginalsDir: b.cfg.Images.OriginalsDir,
		Root:         b.cfg.Site.Dir,
	})

	if err := b.copyAssets(publicDir); err != nil {
		return nil, err
	}

	shells, err := b.pageShells()
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	workers := b.cfg.Build.Workers
	if workers <= 0 {
		workers = 1
	}
	g.SetLimit(workers)

	for _, shell := range shells {
		shell := shell
		g.Go(func() error {
			return b.buildPage(gctx, renderer, shell)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debugf("loader holds %d fetched resources", b.loader.Cached())

	b.summary.Elapsed = time.Since(start)
	summary := b.summary

	log.Infof("built %s, %s and copied %s in %s",
		english.Plural(summary.Pages, "page", "pages"),
		english.Plural(summary.LightboxPages, "lightbox page", "lightbox pages"),
		english.Plural(summary.Assets, "asset", "assets"),
		summary.Elapsed.Round(time.Millisecond))

	event.Publish("site.built", event.Data{
		"pages":    summary.Pages,
		"lightbox": summary.LightboxPages,
		"public":   publicDir,
	})

	return &summary, nil
}

func (b *Builder) pageShells() ([]string, error) {
	dir := b.cfg.SitePath(b.cfg.Site.PagesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read pages directory: %w", err)
	}

	var shells []string
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".html" {
			continue
		}
		shells = append(shells, filepath.Join(dir, e.Name()))
	}
	sort.Strings(shells)
	return shells, nil
}

func (b *Builder) copyAssets(publicDir string) error {
	skipOriginals := ""
	if b.cfg.Images.Variant == "medium" {
		// pages only reference derivatives
		skipOriginals = path.Join(b.cfg.Images.ArtworkDir, b.cfg.Images.OriginalsDir)
	}

	for _, dir := range b.cfg.Site.StaticDirs {
		src := b.cfg.SitePath(dir)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			log.Debugf("static dir %s does not exist, skipping", dir)
			continue
		}

		n, err := copyTree(src, filepath.Join(publicDir, dir), func(rel string) bool {
			full := path.Join(filepath.ToSlash(dir), rel)
			if skipOriginals != "" && full == skipOriginals {
				return true
			}
			return strings.HasPrefix(path.Base(rel), ".")
		})
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", dir, err)
		}
		b.mu.Lock()
		b.summary.Assets += n
		b.mu.Unlock()
	}
	return nil
}

type attachment struct {
	images        lazyimg.Stats
	lightboxPages int
	err           error
}

// buildPage renders one page shell. Behaviour is attached only after the
// document signals that rendering is complete.
func (b *Builder) buildPage(ctx context.Context, renderer *gallery.Renderer, shellPath string) error {
	f, err := os.Open(shellPath)
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	name := filepath.Base(shellPath)
	doc, err := page.Parse(name, f)
	f.Close()
	if err != nil {
		return err
	}

	contract := doc.Contract(b.defaults())

	attached := make(chan attachment, 1)
	go func() {
		if err := doc.Wait(ctx); err != nil {
			attached <- attachment{err: err}
			return
		}
		attached <- b.attach(ctx, doc, renderer, contract)
	}()

	if err := b.render(ctx, doc, renderer, contract); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	doc.MarkRendered()

	var att attachment
	select {
	case att = <-attached:
	case <-ctx.Done():
		return ctx.Err()
	}
	if att.err != nil {
		return fmt.Errorf("failed to attach behaviour to %s: %w", name, att.err)
	}

	html, err := doc.HTML()
	if err != nil {
		return fmt.Errorf("failed to serialise %s: %w", name, err)
	}
	if err := b.checkPlaceholders(name, html); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(b.cfg.PublicPath(), name), []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	b.mu.Lock()
	b.summary.Pages++
	b.summary.LightboxPages += att.lightboxPages
	b.summary.LoadedImages += att.images.Loaded
	b.summary.DeferredImgs += att.images.Deferred
	b.mu.Unlock()

	log.Debugf("rendered %s (%s)", name, contract.Page)
	return nil
}

// render fills the slots in the same order the browser version did: page
// chrome first, then the generated grids.
func (b *Builder) render(ctx context.Context, doc *page.Document, renderer *gallery.Renderer, contract page.Contract) error {
	inject := func(slot, fragment string, vars map[string]string) error {
		err := b.loader.InjectFragment(ctx, doc, slot, fragment, vars)
		if errors.Is(err, loader.ErrSlotNotFound) {
			return nil
		}
		return err
	}

	if err := inject(SlotHead, "head", contract.Vars()); err != nil {
		return err
	}
	if err := inject(SlotHeader, "header", nil); err != nil {
		return err
	}
	doc.SetActiveNavigation(contract.Page)
	if err := inject(SlotFooter, "footer", nil); err != nil {
		return err
	}

	if doc.HasSlot(SlotLightbox) {
		if err := inject(SlotLightbox, "lightbox", nil); err != nil {
			return err
		}
	}

	if slot, ok := doc.Slot(SlotCollections); ok {
		html, err := renderer.RenderHomepageCollections()
		if err != nil {
			return err
		}
		slot.SetHTML(html)
	}

	if slot, ok := doc.Slot(SlotGallery); ok && contract.Collection != "" {
		html, err := renderer.RenderCollectionGallery(contract.Collection)
		if err != nil {
			return err
		}
		slot.SetHTML(html)

		if meta, ok := renderer.CollectionMeta(contract.Collection); ok {
			doc.SetPageHeader(meta.Title, meta.Description)
		} else {
			log.Warnf("%s: unknown collection %q", doc.Name, contract.Collection)
		}
	}

	return nil
}

func (b *Builder) attach(ctx context.Context, doc *page.Document, renderer *gallery.Renderer, contract page.Contract) attachment {
	var att attachment

	att.images = lazyimg.Attach(lazyimg.StaticImages(doc, b.cfg.Site.Dir), &lazyimg.Pending{})

	if b.cfg.Build.LightboxPages && contract.Collection != "" && doc.Find("#lightbox").Length() > 0 {
		n, err := b.writeLightboxPages(ctx, renderer, contract)
		if err != nil {
			att.err = err
			return att
		}
		att.lightboxPages = n
	}

	return att
}

func (b *Builder) checkPlaceholders(name, html string) error {
	names := placeholder.Unmatched(html)
	if len(names) == 0 {
		return nil
	}
	if b.cfg.Site.StrictTemplates {
		return fmt.Errorf("%s: %w: %s", name, ErrUnmatchedPlaceholders, strings.Join(names, ", "))
	}
	log.Warnf("%s: unmatched placeholders left in output: %s", name, strings.Join(names, ", "))
	return nil
}
