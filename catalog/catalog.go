// Package catalog holds the artwork and collection data the portfolio
// pages are rendered from.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for catalog files that are neither JSON nor YAML.
var ErrUnknownFormat = errors.New("unknown catalog format")

// Format identifies the encoding of a catalog document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the decoder from a file name.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// Year is a catalog year. The data files carry it either as a number or
// as a string ("2023", "c. 2019").
type Year string

func (y *Year) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*y = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*y = Year(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	*y = Year(n.String())
	return nil
}

func (y *Year) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*y = ""
		return nil
	}
	*y = Year(node.Value)
	return nil
}

func (y Year) String() string { return string(y) }

// Artwork is a single piece. Dimensions, Year and Description are optional.
type Artwork struct {
	ID          string `json:"-" yaml:"-"`
	Title       string `json:"title" yaml:"title"`
	Medium      string `json:"medium" yaml:"medium"`
	Dimensions  string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Year        Year   `json:"year,omitempty" yaml:"year,omitempty"`
	Filename    string `json:"filename" yaml:"filename"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Caption composes the artwork's display line.
func (a Artwork) Caption() string {
	return Caption(a.Medium, a.Dimensions, a.Year.String())
}

// Collection is an ordered series of artworks.
type Collection struct {
	ID          string   `json:"-" yaml:"-"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Artworks    []string `json:"artworks" yaml:"artworks"`
}

type Homepage struct {
	Collections []string `json:"collections" yaml:"collections"`
}

// Catalog is the whole content document.
type Catalog struct {
	Artworks    map[string]Artwork    `json:"artworks" yaml:"artworks"`
	Collections map[string]Collection `json:"collections" yaml:"collections"`
	Homepage    Homepage              `json:"homepage" yaml:"homepage"`
}

// Parse decodes a catalog document.
func Parse(data []byte, format Format) (*Catalog, error) {
	var c Catalog

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}
	default:
		return nil, ErrUnknownFormat
	}

	c.fillIDs()
	return &c, nil
}

func (c *Catalog) fillIDs() {
	if c.Artworks == nil {
		c.Artworks = map[string]Artwork{}
	}
	if c.Collections == nil {
		c.Collections = map[string]Collection{}
	}
	for id, a := range c.Artworks {
		a.ID = id
		c.Artworks[id] = a
	}
	for id, col := range c.Collections {
		col.ID = id
		c.Collections[id] = col
	}
}

// Artwork looks up an artwork by id.
func (c *Catalog) Artwork(id string) (Artwork, bool) {
	if c == nil {
		return Artwork{}, false
	}
	a, ok := c.Artworks[id]
	return a, ok
}

// Collection looks up a collection by id.
func (c *Catalog) Collection(id string) (Collection, bool) {
	if c == nil {
		return Collection{}, false
	}
	col, ok := c.Collections[id]
	return col, ok
}

// CollectionIDs returns all collection ids in lexical order.
func (c *Catalog) CollectionIDs() []string {
	ids := make([]string, 0, len(c.Collections))
	for id := range c.Collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Problem describes a reference that points nowhere.
type Problem struct {
	Collection string
	Ref        string
}

func (p Problem) String() string {
	if p.Collection == "" {
		return "homepage references unknown collection " + strconv.Quote(p.Ref)
	}
	return fmt.Sprintf("collection %q references unknown artwork %q", p.Collection, p.Ref)
}

// Check lists dangling references. Rendering skips them; this exists so
// the build can log them.
func (c *Catalog) Check() []Problem {
	var problems []Problem

	for _, id := range c.Homepage.Collections {
		if _, ok := c.Collections[id]; !ok {
			problems = append(problems, Problem{Ref: id})
		}
	}

	for _, id := range c.CollectionIDs() {
		for _, ref := range c.Collections[id].Artworks {
			if _, ok := c.Artworks[ref]; !ok {
				problems = append(problems, Problem{Collection: id, Ref: ref})
			}
		}
	}

	return problems
}
