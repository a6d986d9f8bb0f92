// a stupid package name...
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/rpc"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/marcopiovanello/yt-fetch/server/archiver"
	"github.com/marcopiovanello/yt-fetch/server/config"
	"github.com/marcopiovanello/yt-fetch/server/internal/events"
	"github.com/marcopiovanello/yt-fetch/server/internal/kv"
	"github.com/marcopiovanello/yt-fetch/server/internal/queue"
	"github.com/marcopiovanello/yt-fetch/server/internal/thumbnail"
	"github.com/marcopiovanello/yt-fetch/server/logging"
	"github.com/marcopiovanello/yt-fetch/server/openid"
	"github.com/marcopiovanello/yt-fetch/server/rest"
	ytfetchRPC "github.com/marcopiovanello/yt-fetch/server/rpc"
	"github.com/marcopiovanello/yt-fetch/server/status"
	"github.com/marcopiovanello/yt-fetch/server/sys"
	"github.com/marcopiovanello/yt-fetch/server/user"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"
)

type serverConfig struct {
	mdb     *kv.Store
	mq      *queue.MessageQueue
	archive *archiver.Repository
	thumbs  *thumbnail.Cache
	hub     *ytfetchRPC.Hub
	logs    *logging.ObservableLogger
}

func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func QueueOptions(conf *config.Config) queue.Options {
	return queue.Options{
		DownloadPath:   conf.Paths.DownloadPath,
		DownloaderPath: conf.Paths.DownloaderPath,
		TranscoderPath: conf.Paths.TranscoderPath,
		TargetExt:      conf.Convert.TargetExt,
		ChunkSize:      conf.Transfer.ChunkSize,
		RequestTimeout: conf.Transfer.RequestTimeout,
	}
}

func Run(ctx context.Context) error {
	conf := config.Instance()

	// ---- LOGGING ---------------------------------------------------
	observableLogger := logging.NewObservableLogger()

	logWriters := []io.Writer{
		os.Stdout,
		observableLogger, // for the /log websocket
	}

	// file based logging
	if conf.Logging.EnableFileLogging {
		logger, err := logging.NewRotableLogger(conf.Logging.LogPath)
		if err != nil {
			return err
		}
		defer logger.Close()

		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := logger.Rotate(); err != nil {
						slog.Error("log rotation failed", slog.Any("err", err))
					}
				}
			}
		}()

		logWriters = append(logWriters, logger)
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(logWriters...), &slog.HandlerOptions{
		Level: ParseLevel(conf.Logging.Level),
	}))

	// make the new logger the default one with all the new writers
	slog.SetDefault(logger)
	// ----------------------------------------------------------------

	for _, err := range sys.MissingDependencies(conf.Paths.DownloaderPath, conf.Paths.TranscoderPath) {
		slog.Warn("missing external dependency", slog.Any("err", err))
	}

	if err := os.MkdirAll(conf.Paths.LocalDatabasePath, 0755); err != nil {
		return err
	}

	boltdb, err := bolt.Open(
		filepath.Join(conf.Paths.LocalDatabasePath, "bolt.db"),
		0600,
		&bolt.Options{Timeout: 5 * time.Second},
	)
	if err != nil {
		return err
	}
	defer boltdb.Close()

	mdb, err := kv.NewStore(boltdb, time.Second*15)
	if err != nil {
		return err
	}

	repo, err := archiver.OpenRepository(filepath.Join(conf.Paths.LocalDatabasePath, "archive.db"))
	if err != nil {
		return err
	}
	defer repo.Close()

	thumbs, err := thumbnail.NewCache(256)
	if err != nil {
		return err
	}

	bus := events.NewBus()
	mq := queue.New(QueueOptions(conf), bus.Publish)
	arch := archiver.New(repo)
	hub := ytfetchRPC.NewHub()

	coordinator := queue.NewCoordinator(mq, mdb, arch, thumbs, conf.Convert.AutoConvertAudio)

	if err := bus.Subscribe(coordinator.Handle); err != nil {
		return err
	}
	if err := bus.Subscribe(hub.Broadcast); err != nil {
		return err
	}

	if err := mdb.Restore(coordinator.Resume); err != nil {
		slog.Warn("session restore failed", slog.Any("err", err))
	}

	srv, err := newServer(serverConfig{
		mdb:     mdb,
		mq:      mq,
		archive: repo,
		thumbs:  thumbs,
		hub:     hub,
		logs:    observableLogger,
	})
	if err != nil {
		return err
	}

	var (
		network = "tcp"
		address = fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	)

	// support unix sockets
	if strings.HasPrefix(conf.Server.Host, "/") {
		network = "unix"
		address = conf.Server.Host
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		slog.Error("failed to listen", slog.String("err", err.Error()))
		return err
	}

	slog.Info("yt-fetch started", slog.String("address", address))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mq.Run(ctx)
		return nil
	})
	g.Go(func() error { return arch.Run(ctx) })
	g.Go(func() error { return mdb.Run(ctx) })
	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return gracefulShutdown(ctx, srv, hub, bus)
	})

	return g.Wait()
}

func newServer(c serverConfig) (*http.Server, error) {
	args := &rest.ContainerArgs{
		MDB:          c.mdb,
		MQ:           c.mq,
		Archive:      c.archive,
		Thumbnails:   c.thumbs,
		DownloadPath: config.Instance().Paths.DownloadPath,
	}
	service := rest.ProvideService(args)

	rpcServer := rpc.NewServer()
	if err := ytfetchRPC.Register(rpcServer, ytfetchRPC.Container(service)); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.Use(corsMiddleware.Handler)

	// Authentication routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", user.Login)
		r.Get("/logout", user.Logout)

		r.Route("/openid", func(r chi.Router) {
			r.Get("/login", openid.Login)
			r.Get("/signin", openid.SignIn)
			r.Get("/logout", openid.Logout)
		})
	})

	// RPC handlers
	r.Route("/rpc", ytfetchRPC.ApplyRouter(rpcServer, c.hub))

	// REST API handlers
	r.Route("/api/v1", rest.ApplyRouter(args))

	r.Route("/status", status.ApplyRouter(c.mdb, config.Instance().Paths.DownloadPath))

	// Logging
	r.Route("/log", logging.ApplyRouter(c.logs))

	return &http.Server{Handler: r}, nil
}

func gracefulShutdown(ctx context.Context, srv *http.Server, hub *ytfetchRPC.Hub, bus *events.Bus) error {
	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	bus.Wait()

	return srv.Shutdown(shutdownCtx)
}
