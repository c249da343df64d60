package page

// Contract is what a page shell declares about itself on its <body>
// element: data-title, data-description, data-page and data-collection.
type Contract struct {
	Title       string
	Description string
	Page        string
	Collection  string
}

// Contract reads the page contract, using defaults for missing values.
func (d *Document) Contract(defaults Contract) Contract {
	body := d.doc.Find("body").First()

	attr := func(name, fallback string) string {
		if v, ok := body.Attr(name); ok && v != "" {
			return v
		}
		return fallback
	}

	return Contract{
		Title:       attr("data-title", defaults.Title),
		Description: attr("data-description", defaults.Description),
		Page:        attr("data-page", defaults.Page),
		Collection:  attr("data-collection", defaults.Collection),
	}
}

// Vars exposes the contract as fragment variables.
func (c Contract) Vars() map[string]string {
	return map[string]string{
		"title":       c.Title,
		"description": c.Description,
		"page":        c.Page,
		"collection":  c.Collection,
	}
}
