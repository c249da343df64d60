package catalog

// Fallback returns the demo catalog served when the real one cannot be
// fetched, so pages still render something sensible.
func Fallback() *Catalog {
	c := &Catalog{
		Artworks: map[string]Artwork{
			"northern-myth": {
				Title:      "Northern Myth",
				Medium:     "Oil on Canvas",
				Dimensions: "100 x 80 cm",
				Year:       "2024",
				Filename:   "northern-myth.jpg",
			},
			"fjord-spirit": {
				Title:    "Fjord Spirit",
				Medium:   "Acrylic on Canvas",
				Year:     "2023",
				Filename: "fjord-spirit.jpg",
			},
			"ember-field": {
				Title:      "Ember Field",
				Medium:     "Mixed Media",
				Dimensions: "30 x 30 cm",
				Filename:   "ember-field.jpg",
			},
		},
		Collections: map[string]Collection{
			"landscapes": {
				Title:       "Mythical Landscapes",
				Description: "Abstract landscapes shaped by old stories",
				Artworks:    []string{"northern-myth", "fjord-spirit"},
			},
			"studies": {
				Title:       "Studies",
				Description: "Small works and experiments",
				Artworks:    []string{"ember-field"},
			},
		},
		Homepage: Homepage{
			Collections: []string{"landscapes", "studies"},
		},
	}
	c.fillIDs()
	return c
}
