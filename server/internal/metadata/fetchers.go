package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

// Extractor resolves a url into its format list without downloading anything.
type Extractor interface {
	Extract(ctx context.Context, url string) (*Result, error)
}

type Fetcher struct {
	DownloaderPath string
}

func NewFetcher(downloaderPath string) *Fetcher {
	return &Fetcher{DownloaderPath: downloaderPath}
}

func (f *Fetcher) Extract(ctx context.Context, url string) (*Result, error) {
	cmd := exec.CommandContext(ctx, f.DownloaderPath, url, "-J", "--flat-playlist", "--no-warnings")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Join(internal.ErrExtraction, err)
	}

	var bufferedStderr bytes.Buffer

	copied := make(chan struct{})
	go func() {
		io.Copy(&bufferedStderr, stderr)
		close(copied)
	}()

	slog.Info("retrieving metadata", slog.String("url", url))

	var meta Result
	decodeErr := json.NewDecoder(stdout).Decode(&meta)
	io.Copy(io.Discard, stdout)

	<-copied
	waitErr := cmd.Wait()

	if msg := bufferedStderr.String(); strings.Contains(msg, "is not a valid URL") {
		return nil, fmt.Errorf("%w: %s", internal.ErrInvalidURL, url)
	}

	if waitErr != nil {
		return nil, fmt.Errorf("%w: %s", internal.ErrExtraction, strings.TrimSpace(bufferedStderr.String()))
	}

	if decodeErr != nil {
		return nil, errors.Join(internal.ErrExtraction, decodeErr)
	}

	return &meta, nil
}
