// Package lightbox implements the full-size artwork viewer: a small state
// machine over the entries of a rendered gallery.
package lightbox

import (
	"errors"
	"fmt"

	"atelier/catalog"
	"atelier/gallery"
)

var (
	// ErrNoEntries is returned when there is nothing to show; the
	// lightbox stays inert.
	ErrNoEntries  = errors.New("lightbox: no gallery entries")
	ErrOutOfRange = errors.New("lightbox: entry index out of range")
)

// Key is a keyboard key name as reported by the browser.
type Key string

const (
	KeyEscape     Key = "Escape"
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
)

// View is what the lightbox displays for an entry.
type View struct {
	Src     string
	Alt     string
	Title   string
	Details string
}

// Surface is where the lightbox draws itself.
type Surface interface {
	Show(v View)
	Hide()
	// LockScroll suppresses or restores scrolling of the page behind.
	LockScroll(locked bool)
}

// Controller tracks whether the lightbox is open and which entry it shows.
type Controller struct {
	entries []gallery.Entry
	surface Surface
	open    bool
	index   int
}

// New attaches a controller to a gallery.
func New(entries []gallery.Entry, surface Surface) (*Controller, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	return &Controller{entries: entries, surface: surface}, nil
}

// ViewOf builds the display data for an entry.
func ViewOf(e gallery.Entry) View {
	return View{
		Src:     e.Image,
		Alt:     e.Title,
		Title:   e.Title,
		Details: catalog.Caption(e.Medium, e.Dimensions, e.Year),
	}
}

// Len returns the number of entries.
func (c *Controller) Len() int { return len(c.entries) }

// IsOpen reports whether an entry is being displayed.
func (c *Controller) IsOpen() bool { return c.open }

// Index returns the current entry index. It is only meaningful while open.
func (c *Controller) Index() int { return c.index }

// Current returns the displayed entry.
func (c *Controller) Current() (gallery.Entry, bool) {
	if !c.open {
		return gallery.Entry{}, false
	}
	return c.entries[c.index], true
}

// Open shows entry i and locks page scrolling.
func (c *Controller) Open(i int) error {
	if i < 0 || i >= len(c.entries) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(c.entries))
	}
	c.index = i
	c.show()
	if !c.open {
		c.open = true
		c.surface.LockScroll(true)
	}
	return nil
}

// Close hides the lightbox and restores scrolling.
func (c *Controller) Close() {
	if !c.open {
		return
	}
	c.open = false
	c.surface.Hide()
	c.surface.LockScroll(false)
}

// Prev moves to the previous entry, wrapping from the first to the last.
func (c *Controller) Prev() {
	if !c.open {
		return
	}
	n := len(c.entries)
	c.index = (c.index - 1 + n) % n
	c.show()
}

// Next moves to the next entry, wrapping from the last to the first.
func (c *Controller) Next() {
	if !c.open {
		return
	}
	c.index = (c.index + 1) % len(c.entries)
	c.show()
}

// ClickBackdrop handles a click on the lightbox overlay. Clicks on the
// content area keep it open.
func (c *Controller) ClickBackdrop(onContent bool) {
	if !onContent {
		c.Close()
	}
}

// HandleKey applies a key press and reports whether it was consumed.
// Keys are ignored while closed.
func (c *Controller) HandleKey(k Key) bool {
	if !c.open {
		return false
	}
	switch k {
	case KeyEscape:
		c.Close()
	case KeyArrowLeft:
		c.Prev()
	case KeyArrowRight:
		c.Next()
	default:
		return false
	}
	return true
}

func (c *Controller) show() {
	c.surface.Show(ViewOf(c.entries[c.index]))
}
