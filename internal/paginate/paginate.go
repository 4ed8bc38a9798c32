// Package paginate cuts result lists into pages.
package paginate

import "fmt"

// Page returns at most size items starting at offset. A size of 0 means
// every remaining item. An offset at or past the end, or a negative size,
// gives an empty page; a negative offset counts from 0.
func Page[T any](items []T, offset, size int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) || size < 0 {
		return []T{}
	}
	rest := items[offset:]
	if size == 0 || size >= len(rest) {
		return rest
	}
	return rest[:size]
}

// Footer describes a page of shown items out of total, or returns "" when
// the page holds everything.
func Footer(total, offset, shown int) string {
	if shown >= total {
		return ""
	}
	if shown == 0 {
		return fmt.Sprintf("(no items at offset %d of %d)", offset, total)
	}
	return fmt.Sprintf("(items %d-%d of %d)", offset+1, offset+shown, total)
}
