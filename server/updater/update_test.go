package updater

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUpdateExecutable(t *testing.T) {
	bin := fakeBinary(t, `[ "$1" = "-U" ] || exit 2
echo "yt-dlp is up to date"
`)

	out, err := UpdateExecutable(context.Background(), bin)
	if err != nil {
		t.Fatal(err)
	}
	if out != "yt-dlp is up to date" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUpdateExecutableFailure(t *testing.T) {
	bin := fakeBinary(t, "echo nope >&2\nexit 1\n")

	out, err := UpdateExecutable(context.Background(), bin)
	if err == nil {
		t.Fatal("expected an error")
	}
	if out != "nope" {
		t.Fatalf("stderr not returned: %q", out)
	}
}
