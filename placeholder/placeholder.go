// Package placeholder fills {{name}} markers in HTML fragments.
package placeholder

import "regexp"

var marker = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Substitute replaces each {{name}} with vars[name]. Markers without a
// value, including those mapped to an empty string, are left as they are
// so that missing data stays visible in the output.
func Substitute(text string, vars map[string]string) string {
	return marker.ReplaceAllStringFunc(text, func(m string) string {
		key := marker.FindStringSubmatch(m)[1]
		if v := vars[key]; v != "" {
			return v
		}
		return m
	})
}

// Unmatched returns the names of markers still present in text, in order
// of first appearance.
func Unmatched(text string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range marker.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
