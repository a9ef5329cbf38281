// Package normalize cleans raw post and comment text fetched from the
// Weibo API into plain, single-line strings suitable for the corpus.
package normalize

import (
	"regexp"
	"strings"
	"time"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// entityReplacer decodes the small set of HTML entities the Weibo API
// emits in post text. This is intentionally not a general entity
// decoder: the API only produces these four.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// Clean strips markup tags, decodes the fixed entity set, collapses
// whitespace runs to a single space and trims the result. Empty input
// yields an empty string, and Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = tagPattern.ReplaceAllString(text, "")
	text = entityReplacer.Replace(text)
	// Entity decoding can reintroduce tag-like sequences; strip them
	// too so reapplication is a no-op.
	text = tagPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// createdAtLayout is the timestamp format the Weibo API uses,
// e.g. "Wed Dec 03 10:00:00 +0800 2025".
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// ParseCreatedAt parses a Weibo API timestamp. The second return value
// is false when the raw string does not match the API format; callers
// keep the raw string in that case.
func ParseCreatedAt(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(createdAtLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
