package page

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shell = `<!DOCTYPE html>
<html>
<head id="head-content"></head>
<body data-title="Weather" data-page="collections" data-collection="weather">
  <div id="header-content"></div>
  <nav>
    <a class="nav-link active" href="index.html#home">Home</a>
    <a class="nav-link" href="collections.html" data-page="collections">Collections</a>
    <a class="nav-link" href="about.html" data-page="about">About</a>
  </nav>
  <section class="page-header"><h1>Placeholder</h1><p>Placeholder text</p></section>
  <div id="gallery-grid"></div>
</body>
</html>`

func parse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse("test.html", strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestSlot(t *testing.T) {
	doc := parse(t, shell)

	slot, ok := doc.Slot("gallery-grid")
	require.True(t, ok)
	slot.SetHTML(`<div class="gallery-item">A</div>`)
	assert.Equal(t, 1, doc.Find("#gallery-grid .gallery-item").Length())

	_, ok = doc.Slot("collections-grid")
	assert.False(t, ok)
	assert.True(t, doc.HasSlot("header-content"))
}

func TestHeadSlot(t *testing.T) {
	doc := parse(t, shell)

	slot, ok := doc.Slot("head-content")
	require.True(t, ok)
	slot.SetHTML(`<meta charset="UTF-8"><title>Weather</title>`)

	assert.Equal(t, "Weather", doc.Find("head title").Text())
}

func TestContract(t *testing.T) {
	defaults := Contract{Title: "Default", Description: "About the artist", Page: "home"}

	doc := parse(t, shell)
	c := doc.Contract(defaults)
	assert.Equal(t, Contract{
		Title:       "Weather",
		Description: "About the artist",
		Page:        "collections",
		Collection:  "weather",
	}, c)

	bare := parse(t, `<html><body></body></html>`)
	assert.Equal(t, defaults, bare.Contract(defaults))

	vars := c.Vars()
	assert.Equal(t, "Weather", vars["title"])
	assert.Equal(t, "About the artist", vars["description"])
}

func TestSetActiveNavigation(t *testing.T) {
	tests := []struct {
		active string
		want   []string
	}{
		{"collections", []string{"collections.html"}},
		{"home", []string{"index.html#home"}},
		{"contact", nil},
	}

	for _, tt := range tests {
		t.Run(tt.active, func(t *testing.T) {
			doc := parse(t, shell)
			doc.SetActiveNavigation(tt.active)

			var got []string
			for _, n := range doc.Find(".nav-link.active").Nodes {
				for _, a := range n.Attr {
					if a.Key == "href" {
						got = append(got, a.Val)
					}
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetPageHeader(t *testing.T) {
	doc := parse(t, shell)
	doc.SetPageHeader("Weather", "Skies & storms")

	assert.Equal(t, "Weather", doc.Find(".page-header h1").Text())
	assert.Equal(t, "Skies & storms", doc.Find(".page-header p").Text())

	// no header: nothing happens
	bare := parse(t, `<html><body><h1>Keep</h1></body></html>`)
	bare.SetPageHeader("X", "Y")
	assert.Equal(t, "Keep", bare.Find("h1").Text())
}

func TestRenderedSignal(t *testing.T) {
	doc := parse(t, shell)

	select {
	case <-doc.Ready():
		t.Fatal("document reported ready before rendering")
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, doc.Wait(ctx), context.DeadlineExceeded)

	go doc.MarkRendered()
	require.NoError(t, doc.Wait(context.Background()))

	// second call is harmless
	doc.MarkRendered()
}

func TestHTMLKeepsDoctype(t *testing.T) {
	doc := parse(t, shell)
	out, err := doc.HTML()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.ToLower(out), "<!doctype html>"))
}
