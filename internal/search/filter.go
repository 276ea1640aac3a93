// Package search implements the incremental list filter used by the list
// views and the global search popup. Filtering never mutates the underlying
// collection: it maps a query to the indices of matching items, so clearing
// the query restores the full list for free.
package search

import "strings"

// Filter returns the indices of items whose text contains query,
// case-insensitively. An empty query matches everything. The returned indices
// are in ascending order, so the filtered view preserves the collection's
// ordering.
func Filter(items []string, query string) []int {
	matched := make([]int, 0, len(items))
	if query == "" {
		for i := range items {
			matched = append(matched, i)
		}
		return matched
	}
	q := strings.ToLower(query)
	for i, item := range items {
		if strings.Contains(strings.ToLower(item), q) {
			matched = append(matched, i)
		}
	}
	return matched
}

// Match reports whether a single item matches the query under the same rule
// Filter uses.
func Match(item, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item), strings.ToLower(query))
}
