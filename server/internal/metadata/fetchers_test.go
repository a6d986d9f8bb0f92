package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

func fakeDownloader(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFetcherExtract(t *testing.T) {
	bin := fakeDownloader(t, `cat <<'JSON'
{"id":"abc","title":"Song","uploader":"Band","thumbnail":"http://img/abc.jpg",
 "formats":[{"format_id":"140","url":"http://cdn/a","ext":"m4a","acodec":"mp4a","vcodec":"none","filesize":42}]}
JSON
`)

	res, err := NewFetcher(bin).Extract(context.Background(), "https://www.youtube.com/watch?v=abc")
	if err != nil {
		t.Fatal(err)
	}

	if res.Id != "abc" || res.Title != "Song" || res.Uploader != "Band" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Formats) != 1 || res.Formats[0].Size() != 42 {
		t.Fatalf("unexpected formats: %+v", res.Formats)
	}
}

func TestFetcherInvalidURL(t *testing.T) {
	bin := fakeDownloader(t, `echo "ERROR: [generic] 'nope' is not a valid URL. Set --default-search" >&2
exit 1
`)

	_, err := NewFetcher(bin).Extract(context.Background(), "nope")
	if !errors.Is(err, internal.ErrInvalidURL) {
		t.Fatalf("expected ErrInvalidURL, got %v", err)
	}
}

func TestFetcherFailure(t *testing.T) {
	bin := fakeDownloader(t, `echo "ERROR: Video unavailable" >&2
exit 1
`)

	_, err := NewFetcher(bin).Extract(context.Background(), "https://www.youtube.com/watch?v=gone")
	if !errors.Is(err, internal.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}
