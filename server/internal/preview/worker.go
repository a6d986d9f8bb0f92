package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/marcopiovanello/yt-fetch/server/internal/metadata"
	"github.com/marcopiovanello/yt-fetch/server/internal/worker"
)

// A playlist is followed to its first entry once.
const maxRedirects = 1

type request struct {
	id  string
	url string
}

type Worker struct {
	loop      *worker.Loop[request]
	extractor metadata.Extractor
	notify    internal.StatusFunc
}

func NewWorker(extractor metadata.Extractor, notify internal.StatusFunc) *Worker {
	w := &Worker{
		extractor: extractor,
		notify:    notify,
	}
	w.loop = worker.New("preview", w.process)
	return w
}

// Submit enqueues a url and returns the request id carried by every snapshot
// emitted for it.
func (w *Worker) Submit(url string) string {
	req := request{id: uuid.NewString(), url: url}
	w.loop.Submit(req)
	return req.id
}

func (w *Worker) Run(ctx context.Context) { w.loop.Run(ctx) }

func (w *Worker) process(ctx context.Context, req request) {
	url := metadata.NormalizeURL(req.url)

	w.notify(internal.MediaInfo{
		RequestId: req.id,
		URL:       url,
		Title:     "Extracting",
		Uploader:  "Extracting info",
		Status:    internal.StatusExtracting,
	})

	res, resolved, err := w.extract(ctx, url, 0)
	if err != nil {
		w.fail(req, url, err)
		return
	}

	video, audio := metadata.SelectBest(res.Formats)

	uploader := res.Uploader
	if uploader == "" {
		uploader = res.Channel
	}

	slog.Info("preview ready",
		slog.String("id", res.Id),
		slog.String("title", res.Title),
		slog.Bool("video", video != nil),
		slog.Bool("audio", audio != nil),
	)

	w.notify(internal.MediaInfo{
		RequestId: req.id,
		Id:        res.Id,
		URL:       resolved,
		Title:     res.Title,
		Uploader:  uploader,
		Thumbnail: res.Thumbnail,
		Status:    internal.StatusOk,
		BestVideo: video,
		BestAudio: audio,
	})
}

func (w *Worker) extract(ctx context.Context, url string, depth int) (*metadata.Result, string, error) {
	res, err := w.extractor.Extract(ctx, url)
	if err != nil {
		return nil, url, err
	}

	if !res.IsPlaylist() {
		return res, url, nil
	}

	if depth >= maxRedirects {
		return nil, url, fmt.Errorf("%w: nested playlist %s", internal.ErrExtraction, url)
	}
	if len(res.Entries) == 0 || res.Entries[0].Id == "" {
		return nil, url, fmt.Errorf("%w: empty playlist %s", internal.ErrExtraction, url)
	}

	next := metadata.WatchURL(res.Entries[0].Id)
	slog.Info("playlist resolved to first entry",
		slog.String("playlist", url),
		slog.String("url", next),
	)

	return w.extract(ctx, next, depth+1)
}

func (w *Worker) fail(req request, url string, err error) {
	info := internal.MediaInfo{
		RequestId: req.id,
		URL:       url,
		Title:     "Error",
		Status:    internal.StatusError,
		Error:     err.Error(),
	}

	if errors.Is(err, internal.ErrInvalidURL) {
		info.Uploader = "Invalid url"
		slog.Warn("invalid url", slog.String("url", url))
	} else {
		info.Uploader = "Extraction failed"
		slog.Error("metadata extraction failed",
			slog.String("url", url),
			slog.Any("err", err),
		)
	}

	w.notify(info)
}
