package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"

	"github.com/gosimple/slug"

	"atelier/gallery"
	"atelier/lightbox"
	"atelier/page"
	"atelier/placeholder"
)

var lightboxPage = template.Must(template.New("lightbox").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<base href="../../">
{{.Head}}
</head>
<body class="lightbox-page" data-page="collections" data-collection="{{.Collection}}">
<div id="lightbox" class="lightbox lightbox-static">
    <a class="lightbox-close" href="{{.Close}}" aria-label="Close">&times;</a>
    <div class="lightbox-content">
        <img id="lightbox-image" src="{{.View.Src}}" alt="{{.View.Alt}}">
        <div class="lightbox-info">
            <h3 id="lightbox-title">{{.View.Title}}</h3>
            <p id="lightbox-details">{{.View.Details}}</p>{{with .Description}}
            <div class="lightbox-description">{{.}}</div>{{end}}
        </div>
    </div>
    <a id="lightbox-prev" class="lightbox-nav" href="{{.Prev}}" rel="prev">&#10094;</a>
    <a id="lightbox-next" class="lightbox-nav" href="{{.Next}}" rel="next">&#10095;</a>
</div>
</body>
</html>
`))

type lightboxPageData struct {
	Head        template.HTML
	Collection  string
	View        lightbox.View
	Description template.HTML
	Close       string
	Prev        string
	Next        string
}

// LightboxPath returns the site-relative path of an entry's lightbox page.
func LightboxPath(collectionID string, e gallery.Entry) string {
	s := slug.Make(e.Title)
	if s == "" {
		s = slug.Make(e.ID)
	}
	name := fmt.Sprintf("%d-%s.html", e.Index+1, s)
	return path.Join("lightbox", slug.Make(collectionID), name)
}

// writeLightboxPages writes one page per gallery entry, linked in the
// order the lightbox steps through them.
func (b *Builder) writeLightboxPages(ctx context.Context, renderer *gallery.Renderer, contract page.Contract) (int, error) {
	steps, err := lightbox.Sequence(renderer.Entries(contract.Collection))
	if errors.Is(err, lightbox.ErrNoEntries) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	headFragment := b.loader.LoadFragment(ctx, "head")
	meta, _ := renderer.CollectionMeta(contract.Collection)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		description, err := renderer.DescriptionHTML(step.Entry.Description)
		if err != nil {
			return 0, err
		}

		title := step.View.Title
		if meta.Title != "" {
			title += " - " + meta.Title
		}

		data := lightboxPageData{
			Head: template.HTML(placeholder.Substitute(headFragment, map[string]string{
				"title":       title,
				"description": step.View.Details,
			})),
			Collection:  contract.Collection,
			View:        step.View,
			Description: description,
			Close:       contract.Collection + ".html",
			Prev:        LightboxPath(contract.Collection, steps[step.Prev].Entry),
			Next:        LightboxPath(contract.Collection, steps[step.Next].Entry),
		}

		var buf bytes.Buffer
		if err := lightboxPage.Execute(&buf, data); err != nil {
			return 0, fmt.Errorf("failed to render lightbox page: %w", err)
		}

		out := filepath.Join(b.cfg.PublicPath(), filepath.FromSlash(LightboxPath(contract.Collection, step.Entry)))
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return 0, fmt.Errorf("failed to create lightbox directory: %w", err)
		}
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return 0, fmt.Errorf("failed to write lightbox page: %w", err)
		}
	}

	return len(steps), nil
}
