package customer

import "strings"

// Filter narrows records to those whose ID or Segment contains query,
// ignoring case. An empty query keeps every record. The result never aliases
// the input slice.
func Filter(records []Customer, query string) []Customer {
	needle := strings.ToLower(query)
	out := make([]Customer, 0, len(records))
	for _, c := range records {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.ID), needle) ||
			strings.Contains(strings.ToLower(c.Segment), needle) {
			out = append(out, c)
		}
	}
	return out
}
