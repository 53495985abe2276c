package app

import "strings"

const maxTracedQueryLength = 512

// formatDBQueryForTrace collapses whitespace and truncates long statements so
// span attributes stay readable.
func formatDBQueryForTrace(query string) string {
	compact := strings.Join(strings.Fields(query), " ")
	if len(compact) <= maxTracedQueryLength {
		return compact
	}
	return compact[:maxTracedQueryLength] + "..."
}
