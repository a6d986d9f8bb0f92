package internal

import (
	"path/filepath"
	"strings"
)

var reserved = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_",
	"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeTitle turns a media title into a single path element.
func SanitizeTitle(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, reserved.Replace(title))

	cleaned = strings.Trim(cleaned, " .")
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

// OutputPath is <dir>/<title>.<ext> with the title sanitized.
func OutputPath(dir, title, ext string) string {
	return filepath.Join(dir, SanitizeTitle(title)+"."+strings.TrimPrefix(ext, "."))
}
