package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/marcopiovanello/yt-fetch/server/internal/convert"
	"github.com/marcopiovanello/yt-fetch/server/internal/metadata"
	"github.com/marcopiovanello/yt-fetch/server/internal/pipes"
	"github.com/marcopiovanello/yt-fetch/server/internal/preview"
	"github.com/marcopiovanello/yt-fetch/server/internal/transfer"
)

type Options struct {
	DownloadPath   string
	DownloaderPath string
	TranscoderPath string
	TargetExt      string
	ChunkSize      int64
	RequestTimeout time.Duration
}

// MessageQueue owns the three pipeline stages. Every stage has its own FIFO
// and goroutine, all of them report to the same StatusFunc.
type MessageQueue struct {
	preview  *preview.Worker
	transfer *transfer.Worker
	convert  *convert.Worker
}

func NewMessageQueue(p *preview.Worker, t *transfer.Worker, c *convert.Worker) *MessageQueue {
	return &MessageQueue{preview: p, transfer: t, convert: c}
}

// New builds the stages backed by the yt-dlp extractor and ffmpeg.
func New(o Options, notify internal.StatusFunc) *MessageQueue {
	return NewMessageQueue(
		preview.NewWorker(metadata.NewFetcher(o.DownloaderPath), notify),
		transfer.NewWorker(transfer.Options{
			OutputDir:      o.DownloadPath,
			ChunkSize:      o.ChunkSize,
			RequestTimeout: o.RequestTimeout,
		}, notify),
		convert.NewWorker(
			o.DownloadPath,
			o.TargetExt,
			pipes.NewTranscoder(o.TranscoderPath),
			pipes.ID3Tagger{},
			notify,
		),
	)
}

func (m *MessageQueue) Preview(url string) string {
	id := m.preview.Submit(url)
	slog.Info("published preview", slog.String("request_id", id), slog.String("url", url))
	return id
}

func (m *MessageQueue) Transfer(info internal.MediaInfo) error {
	return m.transfer.Submit(info)
}

func (m *MessageQueue) Cancel(id string) bool {
	ok := m.transfer.Cancel(id)
	slog.Info("transfer cancel requested", slog.String("id", id), slog.Bool("found", ok))
	return ok
}

func (m *MessageQueue) Convert(info internal.MediaInfo) error {
	if err := m.convert.Submit(info); err != nil {
		return err
	}
	slog.Info("published conversion", slog.String("id", info.Id))
	return nil
}

// Run starts the consumers and blocks until the context is done.
func (m *MessageQueue) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, run := range []func(context.Context){m.preview.Run, m.transfer.Run, m.convert.Run} {
		wg.Add(1)
		go func(run func(context.Context)) {
			defer wg.Done()
			run(ctx)
		}(run)
	}

	wg.Wait()
}
