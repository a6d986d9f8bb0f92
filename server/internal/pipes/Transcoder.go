package pipes

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

// Transcoder converts a file with ffmpeg, the output container is inferred
// from the destination extension.
type Transcoder struct {
	Path string
	Args []string
}

func NewTranscoder(path string, args ...string) *Transcoder {
	if path == "" {
		path = "ffmpeg"
	}
	return &Transcoder{Path: path, Args: args}
}

func (t *Transcoder) Transcode(ctx context.Context, src, dst string) error {
	args := append([]string{"-hide_banner", "-nostdin", "-i", src}, t.Args...)
	args = append(args, "-y", dst)

	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return errors.Join(internal.ErrTranscode, err)
	}

	if err := cmd.Start(); err != nil {
		return errors.Join(internal.ErrTranscode, err)
	}

	var tail []string

	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		slog.Debug("ffmpeg transcoder", slog.String("log", line))

		tail = append(tail, line)
		if len(tail) > 5 {
			tail = tail[1:]
		}
	}

	if err := cmd.Wait(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: %s: %s", internal.ErrTranscode, err, strings.Join(tail, " | "))
	}

	return nil
}
