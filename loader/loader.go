// Package loader fetches the content catalog and HTML fragments for page
// rendering, memoizing each resource for the loader's lifetime and
// falling back to built-in content when a fetch fails.
package loader

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"path"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"atelier/catalog"
	"atelier/event"
	"atelier/page"
	"atelier/placeholder"
)

var log = event.Log

// ErrSlotNotFound is returned by InjectFragment when the target has no
// slot with the requested id. Callers treat it as non-fatal.
var ErrSlotNotFound = errors.New("slot not found")

//go:embed fallback/*.html
var fallbackFS embed.FS

const catalogKey = "catalog"

// Options locate resources within a Source.
type Options struct {
	CatalogPath string
	FragmentDir string
}

// DefaultOptions matches the site layout: data/artworks.json and
// components/<name>.html.
func DefaultOptions() Options {
	return Options{
		CatalogPath: "data/artworks.json",
		FragmentDir: "components",
	}
}

// Loader fetches and memoizes site resources.
type Loader struct {
	src   Source
	opts  Options
	cache *cache.Cache
	group singleflight.Group
}

// New creates a loader reading from src.
func New(src Source, opts Options) *Loader {
	def := DefaultOptions()
	if opts.CatalogPath == "" {
		opts.CatalogPath = def.CatalogPath
	}
	if opts.FragmentDir == "" {
		opts.FragmentDir = def.FragmentDir
	}
	return &Loader{
		src:   src,
		opts:  opts,
		cache: cache.New(cache.NoExpiration, 0),
	}
}

// LoadCatalog returns the catalog, fetching it at most once. When the
// fetch or parse fails the built-in fallback catalog is used instead.
func (l *Loader) LoadCatalog(ctx context.Context) *catalog.Catalog {
	if v, ok := l.cache.Get(catalogKey); ok {
		return v.(*catalog.Catalog)
	}

	v, _, _ := l.group.Do(catalogKey, func() (interface{}, error) {
		if v, ok := l.cache.Get(catalogKey); ok {
			return v, nil
		}

		c, err := l.fetchCatalog(ctx)
		if err != nil {
			log.Warnf("loader: %s, using fallback catalog", err)
			c = catalog.Fallback()
		}

		if !cancelled(err) {
			l.cache.Set(catalogKey, c, cache.NoExpiration)
		}
		return c, nil
	})

	return v.(*catalog.Catalog)
}

func (l *Loader) fetchCatalog(ctx context.Context) (*catalog.Catalog, error) {
	format, err := catalog.FormatFor(l.opts.CatalogPath)
	if err != nil {
		return nil, err
	}

	data, err := l.src.Fetch(ctx, l.opts.CatalogPath)
	if err != nil {
		return nil, err
	}

	return catalog.Parse(data, format)
}

// LoadFragment returns the HTML for a named fragment, fetching it at most
// once. When the fetch fails the built-in fragment of the same name is
// used, or an empty string if there is none.
func (l *Loader) LoadFragment(ctx context.Context, name string) string {
	key := "fragment:" + name

	if v, ok := l.cache.Get(key); ok {
		return v.(string)
	}

	v, _, _ := l.group.Do(key, func() (interface{}, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}

		var html string
		data, err := l.src.Fetch(ctx, path.Join(l.opts.FragmentDir, name+".html"))
		if err != nil {
			log.Warnf("loader: fragment %s: %s, using fallback", name, err)
			html = FallbackFragment(name)
		} else {
			html = string(data)
		}

		if !cancelled(err) {
			l.cache.Set(key, html, cache.NoExpiration)
		}
		return html, nil
	})

	return v.(string)
}

// cancelled reports whether err came from the caller giving up rather
// than from the resource. Such results are not memoized.
func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// InjectFragment renders fragment name with vars into the slot slotID of
// target, replacing its content.
func (l *Loader) InjectFragment(ctx context.Context, target page.Target, slotID, name string, vars map[string]string) error {
	slot, ok := target.Slot(slotID)
	if !ok {
		log.Warnf("loader: element with id '%s' not found", slotID)
		return fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}

	html := l.LoadFragment(ctx, name)
	slot.SetHTML(placeholder.Substitute(html, vars))
	return nil
}

// Cached reports how many resources are memoized.
func (l *Loader) Cached() int {
	return l.cache.ItemCount()
}

// FallbackFragment returns the built-in markup for a fragment name.
func FallbackFragment(name string) string {
	data, err := fallbackFS.ReadFile("fallback/" + name + ".html")
	if err != nil {
		return ""
	}
	return string(data)
}
