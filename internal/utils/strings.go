// Package utils holds small helpers shared by config parsing and HTTP handlers.
package utils

import "strings"

// ParseCSV splits a comma-separated string into trimmed, non-empty, unique
// values in first-seen order. Returns nil when nothing remains.
func ParseCSV(s string) []string {
	var result []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		v := strings.TrimSpace(part)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
