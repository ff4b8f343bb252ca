package domain

import (
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a company slug from its name: lowercase, every run of
// non-alphanumeric characters collapsed to a single hyphen, no leading or
// trailing hyphens. "Acme Corp" -> "acme-corp".
func Slugify(name string) string {
	s := nonAlnumRun.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
