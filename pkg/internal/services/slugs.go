package services

import (
	"regexp"
	"strings"
)

var (
	slugInvalidPattern  = regexp.MustCompile(`[^a-z0-9]+`)
	slugMarkupPattern   = regexp.MustCompile(`<[^>]*>`)
	slugCollapsePattern = regexp.MustCompile(`-{2,}`)
)

func MakeSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalidPattern.ReplaceAllString(slug, "-")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// StripMarkup removes HTML tags, used when length limits apply to the
// readable text rather than the stored markup.
func StripMarkup(content string) string {
	return slugMarkupPattern.ReplaceAllString(content, "")
}
