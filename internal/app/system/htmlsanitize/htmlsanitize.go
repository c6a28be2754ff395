// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize scrubs user-supplied text before it is stored.
// Group names and tags are plain text and lose all markup; descriptions
// keep basic formatting.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Strip removes every tag and attribute, returning plain text.
func Strip(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// Description sanitizes free-form description text, keeping the safe
// formatting subset (bold, links, lists) and dropping scripts, event
// handlers, and javascript: URLs.
func Description(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
