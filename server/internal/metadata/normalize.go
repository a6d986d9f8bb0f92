package metadata

import (
	"net/url"
	"path"
	"strings"
)

const watchURL = "https://www.youtube.com/watch?v="

// NormalizeURL drops everything after the first query parameter of long-form
// youtube links and rewrites youtu.be short links to the watch form.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.Contains(raw, "youtube"):
		before, _, _ := strings.Cut(raw, "&")
		return before
	case strings.Contains(raw, "youtu.be"):
		if id := shortLinkId(raw); id != "" {
			return WatchURL(id)
		}
	}

	return raw
}

func WatchURL(id string) string { return watchURL + id }

func shortLinkId(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	before, _, _ := strings.Cut(raw, "?")
	return path.Base(before)
}
