// Package page wraps an HTML page shell as a render target: named slots
// that fragments and generated markup are written into.
package page

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"atelier/event"
)

// Slot is a named container in a render target.
type Slot interface {
	SetHTML(html string)
}

// Target resolves slots by identifier.
type Target interface {
	Slot(id string) (Slot, bool)
}

// Document is a parsed page shell.
type Document struct {
	Name string

	doc   *goquery.Document
	ready chan struct{}
	once  sync.Once
}

// Parse reads a page shell.
func Parse(name string, r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page %s: %w", name, err)
	}
	return &Document{
		Name:  name,
		doc:   doc,
		ready: make(chan struct{}),
	}, nil
}

type selectionSlot struct {
	sel *goquery.Selection
}

func (s selectionSlot) SetHTML(html string) { s.sel.SetHtml(html) }

// Slot finds the element with the given id.
func (d *Document) Slot(id string) (Slot, bool) {
	sel := d.doc.Find(`[id="` + id + `"]`).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return selectionSlot{sel: sel}, true
}

// HasSlot reports whether an element with the given id exists.
func (d *Document) HasSlot(id string) bool {
	_, ok := d.Slot(id)
	return ok
}

// Find runs a CSS selector against the document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// SetActiveNavigation marks the navigation link for the active page. A
// link matches on its data-page attribute; on the home page a link to
// "#home" matches as well.
func (d *Document) SetActiveNavigation(active string) {
	d.doc.Find(".nav-link").Each(func(_ int, link *goquery.Selection) {
		link.RemoveClass("active")
		page, _ := link.Attr("data-page")
		href, _ := link.Attr("href")
		if page == active || (active == "home" && strings.Contains(href, "#home")) {
			link.AddClass("active")
		}
	})
}

// SetPageHeader replaces the text of the page header title and subtitle,
// when the page has them.
func (d *Document) SetPageHeader(title, subtitle string) {
	if h := d.doc.Find(".page-header h1").First(); h.Length() > 0 {
		h.SetText(title)
	}
	if p := d.doc.Find(".page-header p").First(); p.Length() > 0 {
		p.SetText(subtitle)
	}
}

// MarkRendered signals that all slots have been populated. It is safe to
// call more than once.
func (d *Document) MarkRendered() {
	d.once.Do(func() {
		close(d.ready)
		event.Publish("page.rendered", event.Data{"page": d.Name})
	})
}

// Ready is closed once the document has been rendered.
func (d *Document) Ready() <-chan struct{} {
	return d.ready
}

// Wait blocks until the document is rendered or ctx is done.
func (d *Document) Wait(ctx context.Context) error {
	select {
	case <-d.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTML renders the document, doctype included.
func (d *Document) HTML() (string, error) {
	return d.doc.Html()
}
