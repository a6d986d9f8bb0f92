package pipes

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

func fakeFFmpeg(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscoderSuccess(t *testing.T) {
	// the destination is the last argument
	bin := fakeFFmpeg(t, `for last; do :; done; echo converted > "$last"`)

	dir := t.TempDir()
	src := filepath.Join(dir, "in.m4a")
	dst := filepath.Join(dir, "out.mp3")
	os.WriteFile(src, []byte("raw"), 0644)

	if err := NewTranscoder(bin).Transcode(context.Background(), src, dst); err != nil {
		t.Fatal(err)
	}

	if b, err := os.ReadFile(dst); err != nil || string(b) != "converted\n" {
		t.Fatalf("unexpected output %q, %v", b, err)
	}
}

func TestTranscoderFailureRemovesOutput(t *testing.T) {
	bin := fakeFFmpeg(t, `for last; do :; done; echo partial > "$last"; echo "Invalid data" >&2; exit 1`)

	dir := t.TempDir()
	dst := filepath.Join(dir, "out.mp3")

	err := NewTranscoder(bin).Transcode(context.Background(), filepath.Join(dir, "in.m4a"), dst)
	if !errors.Is(err, internal.ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}

	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatal("half-written output was not removed")
	}
}
