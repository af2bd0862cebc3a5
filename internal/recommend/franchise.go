package recommend

import (
	"regexp"
	"strings"

	"github.com/hyperjump/susume/internal/models"
)

var (
	yearSuffix    = regexp.MustCompile(`\s*\(\d{4}\)\s*$`)
	sequelSuffix  = regexp.MustCompile(`\s+(\d+|[ivx]+)$`)
	nonAlphaSpace = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// FranchiseKey normalizes an item title into a franchise key so that
// sequels and seasons of the same series collapse to one result: lowercase,
// drop the subtitle after ":", drop a trailing year or sequel numeral, and
// strip punctuation. "Attack on Titan: Final Season" and "Attack on Titan 2"
// both map to "attack on titan".
func FranchiseKey(item *models.MediaItem) string {
	t := strings.ToLower(strings.TrimSpace(item.Title))
	if i := strings.Index(t, ":"); i > 0 {
		t = t[:i]
	}
	t = yearSuffix.ReplaceAllString(t, "")
	t = sequelSuffix.ReplaceAllString(t, "")
	t = nonAlphaSpace.ReplaceAllString(t, "")
	t = strings.Join(strings.Fields(t), " ")
	return t
}
