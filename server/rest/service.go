package rest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/marcopiovanello/yt-fetch/server/archiver"
	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/marcopiovanello/yt-fetch/server/internal/kv"
	"github.com/marcopiovanello/yt-fetch/server/internal/queue"
	"github.com/marcopiovanello/yt-fetch/server/internal/thumbnail"
	"github.com/marcopiovanello/yt-fetch/server/sys"
)

var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type Service struct {
	mdb          *kv.Store
	mq           *queue.MessageQueue
	archive      *archiver.Repository
	thumbnails   *thumbnail.Cache
	downloadPath string
}

func NewService(args *ContainerArgs) *Service {
	return &Service{
		mdb:          args.MDB,
		mq:           args.MQ,
		archive:      args.Archive,
		thumbnails:   args.Thumbnails,
		downloadPath: args.DownloadPath,
	}
}

func (s *Service) Preview(req PreviewRequest) (string, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return "", fmt.Errorf("%w: empty url", ErrBadRequest)
	}

	return s.mq.Preview(url), nil
}

// Transfer starts the download of a previewed job, title and uploader can be
// overridden before the output file is named.
func (s *Service) Transfer(req TransferRequest) error {
	filetype := internal.Filetype(req.Filetype)
	if !filetype.Valid() {
		return fmt.Errorf("%w: unknown filetype %q", ErrBadRequest, req.Filetype)
	}

	// the worker's Queued snapshot reaches the table asynchronously, the
	// claim keeps a second request from queuing the job again meanwhile
	info, err := s.mdb.Claim(req.Id, internal.StatusOk, internal.StatusQueued)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, req.Id)
	case errors.Is(err, kv.ErrStatus):
		return fmt.Errorf("%w: %s is %s", ErrConflict, req.Id, info.Status)
	case err != nil:
		return err
	}

	info.Filetype = filetype

	if t := strings.TrimSpace(req.Title); t != "" {
		info.Title = t
	}
	if u := strings.TrimSpace(req.Uploader); u != "" {
		info.Uploader = u
	}

	if err := s.mq.Transfer(info); err != nil {
		s.mdb.Claim(req.Id, internal.StatusQueued, internal.StatusOk)
		return errors.Join(ErrBadRequest, err)
	}

	return nil
}

func (s *Service) Cancel(id string) error {
	if s.mq.Cancel(id) {
		s.mdb.Delete(id)
		return nil
	}

	if _, err := s.mdb.Get(id); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return fmt.Errorf("%w: %s is not transferring", ErrConflict, id)
}

func (s *Service) Convert(id string) error {
	info, err := s.mdb.Get(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.mq.Convert(info); err != nil {
		return errors.Join(ErrConflict, err)
	}

	return nil
}

// Remove drops a job that no worker owns anymore, like a failed preview.
func (s *Service) Remove(key string) error {
	info, err := s.mdb.Get(key)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if info.Status.IsActive() {
		return fmt.Errorf("%w: %s is %s", ErrConflict, key, info.Status)
	}

	s.mdb.Delete(key)
	return nil
}

func (s *Service) Jobs() []internal.MediaInfo { return s.mdb.All() }

func (s *Service) Job(key string) (internal.MediaInfo, error) {
	info, err := s.mdb.Get(key)
	if err != nil {
		return internal.MediaInfo{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return info, nil
}

func (s *Service) Archive(ctx context.Context, limit int) ([]archiver.Entity, error) {
	return s.archive.List(ctx, limit)
}

func (s *Service) Thumbnail(ctx context.Context, id string) (thumbnail.Image, error) {
	info, err := s.mdb.Get(id)
	if err != nil {
		return thumbnail.Image{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	img, err := s.thumbnails.Get(ctx, id, info.Thumbnail)
	if errors.Is(err, thumbnail.ErrNoThumbnail) {
		return thumbnail.Image{}, errors.Join(ErrNotFound, err)
	}
	return img, err
}

func (s *Service) FreeSpace() (FreeSpaceResponse, error) {
	free, err := sys.FreeSpace(s.downloadPath)
	if err != nil {
		return FreeSpaceResponse{}, err
	}

	return FreeSpaceResponse{
		Path:  s.downloadPath,
		Bytes: free,
		Human: humanize.Bytes(free),
	}, nil
}
