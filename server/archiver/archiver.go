package archiver

import (
	"context"
	"log/slog"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

// Archiver records completed jobs in the background.
type Archiver struct {
	repo *Repository
	ch   chan internal.MediaInfo
}

func New(repo *Repository) *Archiver {
	return &Archiver{
		repo: repo,
		ch:   make(chan internal.MediaInfo, 16),
	}
}

func (a *Archiver) Publish(info internal.MediaInfo) {
	select {
	case a.ch <- info:
	default:
		slog.Warn("archive queue full, entry dropped", slog.String("id", info.Id))
	}
}

func (a *Archiver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-a.ch:
			e, err := a.repo.Archive(ctx, m)
			if err != nil {
				slog.Error("failed to archive job", slog.String("id", m.Id), slog.Any("err", err))
				continue
			}
			slog.Info("archived completed job",
				slog.String("title", e.Title),
				slog.String("source", e.Source),
				slog.String("archive_id", e.Id),
			)
		}
	}
}

func (a *Archiver) Repository() *Repository { return a.repo }
