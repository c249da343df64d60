// Package lazyimg marks deferred images as loaded, either immediately
// when they are already available or once they enter the viewport.
package lazyimg

// Image is an image marked for deferred loading.
type Image interface {
	// Loaded reports whether the image already has non-zero natural
	// dimensions.
	Loaded() bool
	MarkLoaded()
	// OnLoad registers a one-shot handler for the image's load event.
	OnLoad(fn func())
}

// Watcher reports images entering the viewport.
type Watcher interface {
	Observe(img Image, onEnter func())
	Unobserve(img Image)
}

// Stats counts what Attach did.
type Stats struct {
	Loaded   int
	Deferred int
}

// Attach wires up every image: loaded ones are marked at once, the rest
// get a load handler and are handed to the watcher, which re-arms the
// handler and stops watching when the image scrolls into view.
func Attach(images []Image, w Watcher) Stats {
	var st Stats
	for _, img := range images {
		if img.Loaded() {
			img.MarkLoaded()
			st.Loaded++
			continue
		}

		img.OnLoad(img.MarkLoaded)
		st.Deferred++

		img := img
		w.Observe(img, func() {
			img.OnLoad(img.MarkLoaded)
			w.Unobserve(img)
		})
	}
	return st
}
