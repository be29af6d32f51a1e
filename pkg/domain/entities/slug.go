package entities

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	separatorRe  = regexp.MustCompile(`[-/]+`)
	nonCodeRe    = regexp.MustCompile(`[^A-Z0-9_]+`)
	underscoreRe = regexp.MustCompile(`_+`)
)

// Slugify converts a human-readable name into the canonical uppercase
// identifier used for idempotent lookups: whitespace and -/ become
// underscores, remaining punctuation is stripped, runs of underscores
// collapse to one.
func Slugify(value string) string {
	value = strings.TrimSpace(value)
	value = whitespaceRe.ReplaceAllString(value, "_")
	value = separatorRe.ReplaceAllString(value, "_")
	value = strings.ToUpper(value)
	value = nonCodeRe.ReplaceAllString(value, "")
	value = underscoreRe.ReplaceAllString(value, "_")
	return strings.Trim(value, "_")
}

// BuildLocationName produces the stable slug for an internal location,
// one triple per base unit under a warehouse.
func BuildLocationName(warehouse string, role LocationRole, baseUnit string) string {
	return Slugify(warehouse) + "-" + string(role) + "-" + Slugify(baseUnit)
}

// ShortCode derives a warehouse short code (max 5 chars) from a slug.
func ShortCode(slug string) string {
	s := strings.ReplaceAll(slug, "_", "")
	if len(s) > 5 {
		s = s[:5]
	}
	if s == "" {
		return "WH"
	}
	return s
}
