package httpds

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// labelCleaner collapses runs of non-alphanumeric characters into "_".
var labelCleaner = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FileLabel derives the provenance label recorded in file_name columns for a
// remote extract. The last path segment is used when it looks like a file
// name; otherwise the query string is sanitized, and as a last resort the
// whole URL is hashed so the label stays stable and non-empty.
func FileLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return hashLabel(rawURL)
	}

	if base := path.Base(u.Path); strings.Contains(base, ".") && base != "." {
		return base
	}
	if clean := strings.Trim(labelCleaner.ReplaceAllString(u.RawQuery, "_"), "_"); clean != "" {
		return clean
	}
	return hashLabel(rawURL)
}

func hashLabel(s string) string {
	return "extract_" + strconv.FormatUint(xxh3.HashString(s), 16)
}
