package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/marcopiovanello/yt-fetch/server"
	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/internal"
	"github.com/marcopiovanello/yt-fetch/server/internal/events"
	"github.com/marcopiovanello/yt-fetch/server/internal/queue"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	fetchVideo   bool
	fetchConvert bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a single link in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		filetype := internal.Audio
		if fetchVideo {
			filetype = internal.Video
		}

		return fetch(ctx, args[0], filetype, fetchConvert, cmd.OutOrStdout())
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchVideo, "video", false, "Download the best video stream instead of the audio one")
	fetchCmd.Flags().BoolVar(&fetchConvert, "convert", true, "Convert audio downloads to the configured target format")
}

func fetch(ctx context.Context, url string, filetype internal.Filetype, convert bool, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := events.NewBus()
	mq := queue.New(server.QueueOptions(config.Instance()), bus.Publish)

	session := newFetchSession(mq, filetype, convert, out)
	if err := bus.Subscribe(session.handle); err != nil {
		return err
	}

	go mq.Run(ctx)

	session.start(url)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-session.done:
		return err
	}
}

type submitter interface {
	Preview(url string) string
	Transfer(info internal.MediaInfo) error
	Convert(info internal.MediaInfo) error
}

// fetchSession follows a single job through the pipeline and renders it.
type fetchSession struct {
	mq       submitter
	filetype internal.Filetype
	convert  bool
	out      io.Writer

	mu        sync.Mutex
	requestId string
	id        string
	bar       *progressbar.ProgressBar

	once sync.Once
	done chan error
}

func newFetchSession(mq submitter, filetype internal.Filetype, convert bool, out io.Writer) *fetchSession {
	return &fetchSession{
		mq:       mq,
		filetype: filetype,
		convert:  convert,
		out:      out,
		done:     make(chan error, 1),
	}
}

func (s *fetchSession) start(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requestId = s.mq.Preview(url)
}

func (s *fetchSession) owns(info internal.MediaInfo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id != "" && info.Id == s.id {
		return true
	}
	return s.requestId != "" && info.RequestId == s.requestId
}

func (s *fetchSession) finish(err error) {
	s.once.Do(func() {
		if s.bar != nil {
			_ = s.bar.Finish()
		}
		s.done <- err
	})
}

func (s *fetchSession) handle(info internal.MediaInfo) {
	if !s.owns(info) {
		return
	}

	switch info.Status {
	case internal.StatusExtracting:
		fmt.Fprintln(s.out, "extracting", info.URL)

	case internal.StatusError:
		msg := info.Error
		if msg == "" {
			msg = info.Uploader
		}
		s.finish(errors.New(msg))

	case internal.StatusOk:
		s.mu.Lock()
		s.id = info.Id
		s.mu.Unlock()

		fmt.Fprintf(s.out, "%s by %s\n", info.Title, info.Uploader)

		info.Filetype = s.filetype
		if err := s.mq.Transfer(info); err != nil {
			s.finish(err)
		}

	case internal.StatusDownloading:
		s.progress(info)

	case internal.StatusFinished:
		if s.bar != nil {
			_ = s.bar.Finish()
		}
		fmt.Fprintln(s.out, "\nsaved", info.DestinationPath)

		if info.Filetype == internal.Audio && s.convert {
			if err := s.mq.Convert(info); err != nil {
				s.finish(err)
			}
			return
		}
		s.finish(nil)

	case internal.StatusConverting:
		fmt.Fprintln(s.out, "converting", info.Title)

	case internal.StatusConverted:
		fmt.Fprintln(s.out, "converted", info.DestinationPath)
		s.finish(nil)
	}
}

func (s *fetchSession) progress(info internal.MediaInfo) {
	if s.bar == nil {
		s.bar = progressbar.NewOptions64(
			-1,
			progressbar.OptionSetWriter(s.out),
			progressbar.OptionSetDescription(info.Title),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	if info.TotalBytes > 0 && s.bar.GetMax64() != info.TotalBytes {
		s.bar.ChangeMax64(info.TotalBytes)
		s.bar.Describe(fmt.Sprintf("%s (%s)", info.Title, humanize.Bytes(uint64(info.TotalBytes))))
	}

	_ = s.bar.Set64(info.ProgressBytes)
}
