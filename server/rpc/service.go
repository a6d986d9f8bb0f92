package rpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/marcopiovanello/yt-fetch/server/archiver"
	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/marcopiovanello/yt-fetch/server/rest"
	"github.com/marcopiovanello/yt-fetch/server/updater"
)

// Service exposes the pipeline over JSON-RPC. Every method follows the
// net/rpc signature.
type Service struct {
	svc *rest.Service
}

type Running []internal.MediaInfo

type NoArgs struct{}

// Preview enqueues a url, the result is the request id of its snapshots.
func (s *Service) Preview(args rest.PreviewRequest, result *string) error {
	id, err := s.svc.Preview(args)
	if err != nil {
		return err
	}

	*result = id
	return nil
}

// Transfer starts the download of a previewed job.
func (s *Service) Transfer(args rest.TransferRequest, result *string) error {
	if err := s.svc.Transfer(args); err != nil {
		return err
	}

	*result = args.Id
	return nil
}

// Cancel stops a queued or running transfer given its id.
func (s *Service) Cancel(args string, result *string) error {
	slog.Info("cancelling transfer", slog.String("id", args))

	if err := s.svc.Cancel(args); err != nil {
		return err
	}

	*result = args
	return nil
}

// Convert transcodes a finished audio job.
func (s *Service) Convert(args string, result *string) error {
	if err := s.svc.Convert(args); err != nil {
		return err
	}

	*result = args
	return nil
}

// Running retrieves every live job
func (s *Service) Running(args NoArgs, running *Running) error {
	*running = s.svc.Jobs()
	return nil
}

// Clear removes a job no worker owns from the live table
func (s *Service) Clear(args string, result *string) error {
	if err := s.svc.Remove(args); err != nil {
		return err
	}

	*result = args
	return nil
}

func (s *Service) Archive(limit int, result *[]archiver.Entity) error {
	entities, err := s.svc.Archive(context.Background(), limit)
	if err != nil {
		return err
	}

	*result = entities
	return nil
}

func (s *Service) FreeSpace(args NoArgs, free *uint64) error {
	res, err := s.svc.FreeSpace()
	if err != nil {
		return err
	}

	*free = res.Bytes
	return nil
}

// UpdateExecutable updates the extractor binary in place
func (s *Service) UpdateExecutable(args NoArgs, output *string) error {
	slog.Info("updating extractor executable")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	out, err := updater.UpdateExecutable(ctx, config.Instance().Paths.DownloaderPath)
	*output = out
	return err
}
