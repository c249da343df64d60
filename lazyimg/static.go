package lazyimg

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/h2non/filetype"

	"atelier/page"
)

// StaticImage is a lazy <img> in a page being generated. It counts as
// loaded when its source is a local image file whose dimensions can be
// read; marking it loaded adds the "loaded" class and the intrinsic size.
type StaticImage struct {
	sel  *goquery.Selection
	root string

	probed bool
	width  int
	height int
}

// StaticImages collects the lazy images of a document. Relative sources
// are resolved against root.
func StaticImages(doc *page.Document, root string) []Image {
	var images []Image
	doc.Find(`img[loading="lazy"]`).Each(func(_ int, sel *goquery.Selection) {
		images = append(images, &StaticImage{sel: sel, root: root})
	})
	return images
}

func (i *StaticImage) Loaded() bool {
	if !i.probed {
		i.probed = true
		i.width, i.height = probe(i.localPath())
	}
	return i.width > 0
}

func (i *StaticImage) MarkLoaded() {
	i.sel.AddClass("loaded")
	if i.width > 0 {
		if _, ok := i.sel.Attr("width"); !ok {
			i.sel.SetAttr("width", strconv.Itoa(i.width))
			i.sel.SetAttr("height", strconv.Itoa(i.height))
		}
	}
}

// OnLoad is a no-op: nothing loads during generation, the browser does.
func (i *StaticImage) OnLoad(fn func()) {}

func (i *StaticImage) localPath() string {
	src, ok := i.sel.Attr("src")
	if !ok || src == "" {
		return ""
	}
	u, err := url.Parse(src)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return filepath.Join(i.root, filepath.FromSlash(strings.TrimPrefix(u.Path, "/")))
}

func probe(path string) (int, int) {
	if path == "" {
		return 0, 0
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	head := make([]byte, 261)
	n, _ := io.ReadFull(f, head)
	if n == 0 || !filetype.IsImage(head[:n]) {
		return 0, 0
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// Pending is a Watcher for generated pages. There is no viewport, so it
// only remembers which images were left for the browser to load.
type Pending struct {
	Images []Image
}

func (p *Pending) Observe(img Image, onEnter func()) {
	p.Images = append(p.Images, img)
}

func (p *Pending) Unobserve(img Image) {
	for i, o := range p.Images {
		if o == img {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return
		}
	}
}
