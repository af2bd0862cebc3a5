// Package utils provides shared utilities for text and logging.
package utils

import "regexp"

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// Truncate returns s truncated to maxLen characters, with "..." appended if
// truncated. If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// StripHTML removes HTML tags from s. Catalog descriptions from AniList
// carry markup like <br> and <i> that should not reach embeddings or
// terminal output.
func StripHTML(s string) string {
	return htmlTag.ReplaceAllString(s, "")
}
