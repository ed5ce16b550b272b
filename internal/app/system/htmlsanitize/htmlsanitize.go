// Package htmlsanitize strips unsafe markup from user-supplied rich text
// before it is stored or rendered. Free-text fields that reach the audit
// ledger (justifications, escalation notes, vote comments) pass through
// here so stored history can be replayed into any surface safely.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc keeps the formatting tags reasonable for user-generated content
	// while dropping scripts, event handlers, and embeds.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup; used for fields rendered as plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize returns the input with unsafe HTML removed, keeping benign
// formatting tags.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// SanitizeHTML is Sanitize for pre-trusted template fragments.
func SanitizeHTML(s template.HTML) template.HTML {
	return template.HTML(ugc.Sanitize(string(s)))
}

// PlainText strips all markup and trims surrounding whitespace.
func PlainText(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
