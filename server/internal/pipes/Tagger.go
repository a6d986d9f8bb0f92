package pipes

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/marcopiovanello/yt-fetch/server/internal"
)

// ID3Tagger writes title and artist frames into mp3 files. Other containers
// are left untouched.
type ID3Tagger struct{}

func (ID3Tagger) Tag(path string, info internal.MediaInfo) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		slog.Debug("tagging skipped, unsupported container", slog.String("path", path))
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetArtist(info.Uploader)
	if info.Title != "" {
		tag.SetTitle(info.Title)
	}

	return tag.Save()
}
