package lazyimg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeImage struct {
	name     string
	natural  int
	loaded   bool
	handlers []func()
}

func (f *fakeImage) Loaded() bool     { return f.natural > 0 }
func (f *fakeImage) MarkLoaded()      { f.loaded = true }
func (f *fakeImage) OnLoad(fn func()) { f.handlers = append(f.handlers, fn) }

// fire simulates the browser finishing the download.
func (f *fakeImage) fire() {
	hs := f.handlers
	f.handlers = nil
	for _, h := range hs {
		h()
	}
}

type fakeWatcher struct {
	observed map[Image]func()
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{observed: map[Image]func(){}}
}

func (w *fakeWatcher) Observe(img Image, onEnter func()) { w.observed[img] = onEnter }
func (w *fakeWatcher) Unobserve(img Image)               { delete(w.observed, img) }

func (w *fakeWatcher) enter(img Image) {
	if fn, ok := w.observed[img]; ok {
		fn()
	}
}

func TestAttachAlreadyLoaded(t *testing.T) {
	img := &fakeImage{name: "a", natural: 800}
	w := newFakeWatcher()

	st := Attach([]Image{img}, w)

	assert.Equal(t, Stats{Loaded: 1}, st)
	assert.True(t, img.loaded)
	assert.Empty(t, w.observed)
	assert.Empty(t, img.handlers)
}

func TestAttachDeferred(t *testing.T) {
	img := &fakeImage{name: "b"}
	w := newFakeWatcher()

	st := Attach([]Image{img}, w)

	assert.Equal(t, Stats{Deferred: 1}, st)
	assert.False(t, img.loaded)
	assert.Contains(t, w.observed, Image(img))
	assert.Len(t, img.handlers, 1)

	w.enter(img)
	assert.NotContains(t, w.observed, Image(img))
	assert.Len(t, img.handlers, 2)

	img.fire()
	assert.True(t, img.loaded)
}

func TestAttachLoadWithoutIntersection(t *testing.T) {
	img := &fakeImage{name: "c"}
	w := newFakeWatcher()

	Attach([]Image{img}, w)
	img.fire()

	assert.True(t, img.loaded)
}

func TestAttachMixed(t *testing.T) {
	images := []Image{
		&fakeImage{name: "a", natural: 10},
		&fakeImage{name: "b"},
		&fakeImage{name: "c"},
	}
	w := newFakeWatcher()

	st := Attach(images, w)
	assert.Equal(t, Stats{Loaded: 1, Deferred: 2}, st)
	assert.Len(t, w.observed, 2)
}
