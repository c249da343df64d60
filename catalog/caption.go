package catalog

import "strings"

// Caption joins medium, dimensions and year with ", ", leaving out the
// optional parts that are empty.
func Caption(medium, dimensions, year string) string {
	var b strings.Builder
	b.WriteString(medium)
	if dimensions != "" {
		b.WriteString(", ")
		b.WriteString(dimensions)
	}
	if year != "" {
		b.WriteString(", ")
		b.WriteString(year)
	}
	return b.String()
}
