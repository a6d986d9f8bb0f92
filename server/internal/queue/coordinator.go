package queue

import (
	"log/slog"

	"github.com/marcopiovanello/yt-fetch/server/internal"
)

type Table interface {
	Set(internal.MediaInfo)
	Update(internal.MediaInfo) bool
	Delete(key string)
}

type Archiver interface {
	Publish(internal.MediaInfo)
}

type Prefetcher interface {
	Prefetch(id, url string)
}

// Coordinator reacts to status snapshots: it keeps the live table current,
// hands finished audio to the converter and archives completed jobs.
type Coordinator struct {
	mq          *MessageQueue
	table       Table
	archiver    Archiver
	thumbnails  Prefetcher
	autoConvert bool
}

func NewCoordinator(mq *MessageQueue, table Table, a Archiver, p Prefetcher, autoConvert bool) *Coordinator {
	return &Coordinator{
		mq:          mq,
		table:       table,
		archiver:    a,
		thumbnails:  p,
		autoConvert: autoConvert,
	}
}

func (c *Coordinator) Handle(info internal.MediaInfo) {
	if !c.table.Update(info) {
		return
	}

	switch info.Status {
	case internal.StatusOk:
		if c.thumbnails != nil {
			c.thumbnails.Prefetch(info.Id, info.Thumbnail)
		}

	case internal.StatusFinished:
		if info.Filetype == internal.Audio {
			if !c.autoConvert {
				return
			}
			if err := c.mq.Convert(info); err != nil {
				slog.Error("cannot schedule conversion", slog.String("id", info.Id), slog.Any("err", err))
			}
			return
		}
		c.complete(info)

	case internal.StatusConverted:
		c.complete(info)
	}
}

func (c *Coordinator) complete(info internal.MediaInfo) {
	if c.archiver != nil {
		c.archiver.Publish(info)
	}
	c.table.Delete(info.Key())
}

// Resume resubmits a job restored from a previous session.
func (c *Coordinator) Resume(info internal.MediaInfo) {
	var err error

	switch info.Status {
	case internal.StatusQueued, internal.StatusDownloading:
		err = c.mq.Transfer(info)
	case internal.StatusFinished, internal.StatusConverting:
		info.Status = internal.StatusFinished
		c.table.Set(info)
		err = c.mq.Convert(info)
	}

	if err != nil {
		slog.Warn("cannot resume job", slog.String("id", info.Id), slog.Any("err", err))
		c.table.Delete(info.Key())
	}
}
