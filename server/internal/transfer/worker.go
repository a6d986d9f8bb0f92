package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/marcopiovanello/yt-fetch/server/internal/worker"
	"github.com/marcopiovanello/yt-fetch/server/sys"
)

const DefaultChunkSize int64 = 1 << 20

var ErrNoStream = errors.New("no stream for the requested filetype")

type Options struct {
	OutputDir      string
	ChunkSize      int64
	RequestTimeout time.Duration
}

// Worker downloads one job at a time with ranged requests of ChunkSize bytes.
type Worker struct {
	loop    *worker.Loop[internal.MediaInfo]
	client  *http.Client
	outDir  string
	chunk   int64
	notify  internal.StatusFunc
	cancels *CancelSet

	// pending counts queued submissions per id, active is the id being
	// transferred. Both decide whether a cancel request can still be honored.
	mu      sync.Mutex
	pending map[string]int
	active  string
}

func NewWorker(opts Options, notify internal.StatusFunc) *Worker {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	w := &Worker{
		client:  &http.Client{Timeout: opts.RequestTimeout},
		outDir:  opts.OutputDir,
		chunk:   opts.ChunkSize,
		notify:  notify,
		cancels: NewCancelSet(),
		pending: make(map[string]int),
	}
	w.loop = worker.New("transfer", w.process)

	return w
}

func (w *Worker) Run(ctx context.Context) { w.loop.Run(ctx) }

// Submit queues the job and emits its Queued snapshot. Progress counters are
// reset, a resubmitted job starts from scratch.
func (w *Worker) Submit(info internal.MediaInfo) error {
	if info.Id == "" || info.ActiveStream() == nil {
		return ErrNoStream
	}

	info.Status = internal.StatusQueued
	info.ProgressBytes = 0
	info.TotalBytes = 0
	info.Speed = 0
	info.Error = ""

	w.mu.Lock()
	w.pending[info.Id]++
	w.mu.Unlock()

	w.notify(info)
	w.loop.Submit(info)

	slog.Info("transfer queued", slog.String("id", info.Id), slog.String("filetype", string(info.Filetype)))
	return nil
}

// Cancel drops queued submissions of the job and flags the running one. It
// reports whether there was anything to cancel.
func (w *Worker) Cancel(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	dropped := w.loop.Remove(func(m internal.MediaInfo) bool { return m.Id == id })
	if dropped > 0 {
		w.pending[id] -= dropped
		if w.pending[id] <= 0 {
			delete(w.pending, id)
		}
	}

	// dequeued but not yet marked active, or running
	if w.pending[id] > 0 || w.active == id {
		w.cancels.Add(id)
		return true
	}

	return dropped > 0
}

func (w *Worker) begin(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending[id]--; w.pending[id] <= 0 {
		delete(w.pending, id)
	}
	w.active = id
}

// end releases the job and reports whether a cancel request is pending for
// it. Once released, Cancel no longer reaches the job.
func (w *Worker) end(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.active = ""
	return w.cancels.Take(id)
}

func (w *Worker) process(ctx context.Context, info internal.MediaInfo) {
	w.begin(info.Id)

	if w.cancels.Has(info.Id) {
		w.end(info.Id)
		slog.Info("transfer cancelled before start", slog.String("id", info.Id))
		return
	}

	stream := info.ActiveStream()
	dest := internal.OutputPath(w.outDir, info.Title, stream.Ext)

	if fi, err := os.Stat(dest); err == nil {
		if w.end(info.Id) {
			return
		}
		slog.Info("file already present, skipping transfer",
			slog.String("id", info.Id),
			slog.String("path", dest),
		)
		info.Status = internal.StatusFinished
		info.DestinationPath = dest
		info.ProgressBytes = fi.Size()
		info.TotalBytes = fi.Size()
		w.notify(info)
		return
	}

	if err := w.prepare(stream.Filesize); err != nil {
		w.end(info.Id)
		w.fail(info, err)
		return
	}

	info.Status = internal.StatusDownloading
	w.notify(info)

	part := dest + ".part"
	err := w.fetch(ctx, &info, stream.URL, part)

	cancelled := w.end(info.Id)

	switch {
	case cancelled || errors.Is(err, internal.ErrCancelled):
		os.Remove(part)
		slog.Info("transfer cancelled", slog.String("id", info.Id))
		return
	case ctx.Err() != nil:
		os.Remove(part)
		slog.Warn("transfer interrupted", slog.String("id", info.Id))
		return
	case err != nil:
		os.Remove(part)
		w.fail(info, err)
		return
	}

	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		w.fail(info, errors.Join(internal.ErrTransferIO, err))
		return
	}

	slog.Info("transfer finished",
		slog.String("id", info.Id),
		slog.String("path", dest),
		slog.String("size", humanize.Bytes(uint64(info.ProgressBytes))),
	)

	info.Status = internal.StatusFinished
	info.DestinationPath = dest
	w.notify(info)
}

func (w *Worker) prepare(size int64) error {
	if err := os.MkdirAll(w.outDir, os.ModePerm); err != nil {
		return errors.Join(internal.ErrTransferIO, err)
	}

	if size <= 0 {
		return nil
	}

	free, err := sys.FreeSpace(w.outDir)
	if err != nil {
		slog.Warn("cannot stat output directory", slog.String("dir", w.outDir), slog.Any("err", err))
		return nil
	}

	if free < uint64(size) {
		return fmt.Errorf("%w: %s needed, %s available", internal.ErrTransferIO,
			humanize.Bytes(uint64(size)), humanize.Bytes(free))
	}

	return nil
}

func (w *Worker) fail(info internal.MediaInfo, err error) {
	slog.Error("transfer failed", slog.String("id", info.Id), slog.Any("err", err))

	info.Status = internal.StatusError
	info.Error = err.Error()
	w.notify(info)
}

// fetch writes the resource at url into path chunk by chunk. A failed request
// after the first chunk is taken as the end of the stream.
func (w *Worker) fetch(ctx context.Context, info *internal.MediaInfo, url, path string) error {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Join(internal.ErrTransferIO, err)
	}
	defer fd.Close()

	var (
		start = int64(0)
		end   = w.chunk - 1
		last  = time.Now()
	)

	for chunk := 0; ; chunk++ {
		body, cr, err := w.fetchChunk(ctx, url, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if chunk == 0 {
				return err
			}
			slog.Debug("end of stream", slog.String("id", info.Id), slog.Int("chunk", chunk), slog.Any("err", err))
			return nil
		}

		if _, err := fd.Write(body); err != nil {
			return errors.Join(internal.ErrTransferIO, err)
		}

		n := int64(len(body))
		info.ProgressBytes += n
		if cr.Total >= 0 {
			info.TotalBytes = cr.Total
		}
		if elapsed := time.Since(last).Seconds(); elapsed > 0 {
			info.Speed = float64(n) / elapsed
		}

		if w.cancels.Has(info.Id) {
			return internal.ErrCancelled
		}

		if cr.Last() || n == 0 {
			return nil
		}

		w.notify(*info)

		last = time.Now()
		start = cr.End + 1
		end = start + w.chunk - 1
	}
}

func (w *Worker) fetchChunk(ctx context.Context, url string, start, end int64) ([]byte, ContentRange, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ContentRange{}, errors.Join(internal.ErrTransferIO, err)
	}
	req.Header.Set("Range", rangeHeader(start, end))

	res, err := w.client.Do(req)
	if err != nil {
		return nil, ContentRange{}, errors.Join(internal.ErrTransferIO, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusPartialContent:
		body, err := io.ReadAll(io.LimitReader(res.Body, end-start+1))
		if err != nil {
			return nil, ContentRange{}, errors.Join(internal.ErrTransferIO, err)
		}

		cr, err := ParseContentRange(res.Header.Get("Content-Range"))
		if err != nil {
			return nil, ContentRange{}, errors.Join(internal.ErrTransferIO, err)
		}
		cr.End = cr.Start + int64(len(body)) - 1

		return body, cr, nil

	case http.StatusOK:
		// range ignored: the whole resource is in the body
		if start > 0 {
			return nil, ContentRange{}, fmt.Errorf("%w: server ignored range", internal.ErrTransferIO)
		}

		body, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, ContentRange{}, errors.Join(internal.ErrTransferIO, err)
		}

		size := int64(len(body))
		return body, ContentRange{Start: 0, End: size - 1, Total: size}, nil
	}

	return nil, ContentRange{}, fmt.Errorf("%w: unexpected status %s", internal.ErrTransferIO, res.Status)
}
