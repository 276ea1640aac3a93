package ui

import "fmt"

// truncate cuts value to limit runes, ending with an ellipsis when cut.
func truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// window returns the half-open row range [start, end) that keeps cursor
// visible within height rows.
func window(cursor, count, height int) (int, int) {
	if count <= height {
		return 0, count
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > count {
		start = count - height
	}
	return start, start + height
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %s", n, pluralForm)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
