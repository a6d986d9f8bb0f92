package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/marcopiovanello/yt-fetch/server/internal/worker"
)

const DefaultTargetExt = "mp3"

var ErrNotAudio = errors.New("only finished audio jobs can be converted")

type Transcoder interface {
	Transcode(ctx context.Context, src, dst string) error
}

type Tagger interface {
	Tag(path string, info internal.MediaInfo) error
}

type Worker struct {
	loop       *worker.Loop[internal.MediaInfo]
	outDir     string
	targetExt  string
	transcoder Transcoder
	tagger     Tagger
	notify     internal.StatusFunc
}

func NewWorker(outDir, targetExt string, t Transcoder, tagger Tagger, notify internal.StatusFunc) *Worker {
	if targetExt == "" {
		targetExt = DefaultTargetExt
	}

	w := &Worker{
		outDir:     outDir,
		targetExt:  targetExt,
		transcoder: t,
		tagger:     tagger,
		notify:     notify,
	}
	w.loop = worker.New("convert", w.process)

	return w
}

func (w *Worker) Run(ctx context.Context) { w.loop.Run(ctx) }

func (w *Worker) Submit(info internal.MediaInfo) error {
	if info.Filetype != internal.Audio || info.Status != internal.StatusFinished {
		return ErrNotAudio
	}

	w.loop.Submit(info)
	return nil
}

func (w *Worker) source(info internal.MediaInfo) string {
	if info.DestinationPath != "" {
		return info.DestinationPath
	}
	if stream := info.ActiveStream(); stream != nil {
		return internal.OutputPath(w.outDir, info.Title, stream.Ext)
	}
	return ""
}

func (w *Worker) process(ctx context.Context, info internal.MediaInfo) {
	dst := internal.OutputPath(w.outDir, info.Title, w.targetExt)

	if _, err := os.Stat(dst); err == nil {
		slog.Info("converted file already present", slog.String("id", info.Id), slog.String("path", dst))
		info.Status = internal.StatusConverted
		info.DestinationPath = dst
		w.notify(info)
		return
	}

	src := w.source(info)

	if src == "" {
		w.fail(info, fmt.Errorf("%w: unknown source file", internal.ErrTranscode))
		return
	}
	if src == dst {
		w.fail(info, fmt.Errorf("%w: source is already a %s file", internal.ErrTranscode, w.targetExt))
		return
	}

	info.Status = internal.StatusConverting
	w.notify(info)

	slog.Info("converting", slog.String("id", info.Id), slog.String("src", src), slog.String("dst", dst))

	if err := w.transcoder.Transcode(ctx, src, dst); err != nil {
		os.Remove(dst)
		if ctx.Err() != nil {
			slog.Warn("conversion interrupted", slog.String("id", info.Id))
			return
		}
		w.fail(info, err)
		return
	}

	if err := os.Remove(src); err != nil {
		slog.Warn("cannot remove source", slog.String("path", src), slog.Any("err", err))
	}

	if w.tagger != nil {
		if err := w.tagger.Tag(dst, info); err != nil {
			slog.Warn("tagging failed", slog.String("path", dst), slog.Any("err", err))
		}
	}

	info.Status = internal.StatusConverted
	info.DestinationPath = dst
	w.notify(info)
}

func (w *Worker) fail(info internal.MediaInfo, err error) {
	slog.Error("conversion failed", slog.String("id", info.Id), slog.Any("err", err))

	info.Status = internal.StatusError
	info.Error = err.Error()
	w.notify(info)
}
