// Package gallery renders catalog collections into the homepage grid and
// the per-collection gallery grid.
package gallery

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"atelier/catalog"
)

// Options control image references.
type Options struct {
	ImageBase string
	// Variant "medium" points images at the generated derivatives.
	Variant      string
	MediumDir    string
	OriginalsDir string
	// Root is the site directory on disk. When set, originals that were
	// moved into OriginalsDir by the thumbnail run are linked there.
	Root string
}

func DefaultOptions() Options {
	return Options{
		ImageBase:    "images/artworks",
		MediumDir:    "medium",
		OriginalsDir: "originals",
	}
}

// Card is one homepage collection card.
type Card struct {
	ID    string
	Href  string
	Title string
	Image string
	Count int
}

// Entry is one artwork in a collection gallery.
type Entry struct {
	ID          string
	Index       int
	Title       string
	Medium      string
	Dimensions  string
	Year        string
	Image       string
	Caption     string
	Description string
}

// Meta is what a collection page shows in its header.
type Meta struct {
	Title       string
	Description string
}

// Renderer turns a catalog into grid markup.
type Renderer struct {
	cat    *catalog.Catalog
	opts   Options
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a renderer for c.
func New(c *catalog.Catalog, opts Options) *Renderer {
	if opts.ImageBase == "" {
		opts.ImageBase = DefaultOptions().ImageBase
	}
	if opts.MediumDir == "" {
		opts.MediumDir = DefaultOptions().MediumDir
	}
	if opts.OriginalsDir == "" {
		opts.OriginalsDir = DefaultOptions().OriginalsDir
	}
	return &Renderer{
		cat:    c,
		opts:   opts,
		md:     goldmark.New(),
		policy: bluemonday.UGCPolicy(),
	}
}

// ImageURL returns the site-relative image path for an artwork.
func (r *Renderer) ImageURL(a catalog.Artwork) string {
	if r.opts.Variant == "medium" {
		stem := strings.TrimSuffix(a.Filename, path.Ext(a.Filename))
		return path.Join(r.opts.ImageBase, r.opts.MediumDir, stem+".jpg")
	}

	src := path.Join(r.opts.ImageBase, a.Filename)
	if r.opts.Root != "" && !r.exists(src) {
		archived := path.Join(r.opts.ImageBase, r.opts.OriginalsDir, a.Filename)
		if r.exists(archived) {
			return archived
		}
	}
	return src
}

func (r *Renderer) exists(rel string) bool {
	info, err := os.Stat(filepath.Join(r.opts.Root, filepath.FromSlash(rel)))
	return err == nil && info.Mode().IsRegular()
}

// HomepageCards returns one card per known homepage collection, in
// homepage order. Unknown ids produce no card.
func (r *Renderer) HomepageCards() []Card {
	var cards []Card
	for _, id := range r.cat.Homepage.Collections {
		col, ok := r.cat.Collection(id)
		if !ok {
			continue
		}

		card := Card{
			ID:    id,
			Href:  id + ".html",
			Title: col.Title,
			Count: len(col.Artworks),
		}
		if len(col.Artworks) > 0 {
			if first, ok := r.cat.Artwork(col.Artworks[0]); ok {
				card.Image = r.ImageURL(first)
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// RenderHomepageCollections renders the homepage collection grid.
func (r *Renderer) RenderHomepageCollections() (string, error) {
	var buf bytes.Buffer
	for _, card := range r.HomepageCards() {
		if err := templates.ExecuteTemplate(&buf, "card", card); err != nil {
			return "", fmt.Errorf("failed to render card %s: %w", card.ID, err)
		}
	}
	return buf.String(), nil
}

// Entries resolves a collection into gallery entries in display order,
// skipping artwork ids the catalog does not know.
func (r *Renderer) Entries(collectionID string) []Entry {
	col, ok := r.cat.Collection(collectionID)
	if !ok {
		return nil
	}

	var entries []Entry
	for _, id := range col.Artworks {
		a, ok := r.cat.Artwork(id)
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			ID:          id,
			Index:       len(entries),
			Title:       a.Title,
			Medium:      a.Medium,
			Dimensions:  a.Dimensions,
			Year:        a.Year.String(),
			Image:       r.ImageURL(a),
			Caption:     a.Caption(),
			Description: a.Description,
		})
	}
	return entries
}

// RenderCollectionGallery renders a collection's gallery grid. Unknown
// collections render as an empty string.
func (r *Renderer) RenderCollectionGallery(collectionID string) (string, error) {
	var buf bytes.Buffer
	for _, e := range r.Entries(collectionID) {
		if err := templates.ExecuteTemplate(&buf, "entry", e); err != nil {
			return "", fmt.Errorf("failed to render artwork %s: %w", e.ID, err)
		}
	}
	return buf.String(), nil
}

// CollectionMeta returns the header data of a collection.
func (r *Renderer) CollectionMeta(collectionID string) (Meta, bool) {
	col, ok := r.cat.Collection(collectionID)
	if !ok {
		return Meta{}, false
	}
	return Meta{Title: col.Title, Description: col.Description}, true
}

// DescriptionHTML renders a markdown description to sanitized HTML.
func (r *Renderer) DescriptionHTML(markdown string) (template.HTML, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render description: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}
