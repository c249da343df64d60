package lightbox

import "atelier/gallery"

// Step is one stop of a walk through the lightbox: the entry shown and
// where the previous and next triggers lead.
type Step struct {
	Entry gallery.Entry
	View  View
	Prev  int
	Next  int
}

type recorder struct {
	last View
}

func (r *recorder) Show(v View)     { r.last = v }
func (r *recorder) Hide()           {}
func (r *recorder) LockScroll(bool) {}

// Sequence drives a controller through every entry and records what each
// stop shows along with its navigation targets. Static builds use it to
// write one page per entry.
func Sequence(entries []gallery.Entry) ([]Step, error) {
	rec := &recorder{}
	c, err := New(entries, rec)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, len(entries))
	for i := range entries {
		if err := c.Open(i); err != nil {
			return nil, err
		}
		step := Step{Entry: entries[i], View: rec.last}

		c.HandleKey(KeyArrowLeft)
		step.Prev = c.Index()
		c.HandleKey(KeyArrowRight)
		c.HandleKey(KeyArrowRight)
		step.Next = c.Index()

		c.HandleKey(KeyEscape)
		steps = append(steps, step)
	}
	return steps, nil
}
