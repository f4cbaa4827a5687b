package serverrun

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/vesta/internal/config"
	"github.com/rzbill/vesta/internal/runtime"
	httpserver "github.com/rzbill/vesta/internal/server/http"
	pebblestore "github.com/rzbill/vesta/internal/storage/pebble"
	logpkg "github.com/rzbill/vesta/pkg/log"
)

type Options struct {
	DataDir       string
	HTTPAddr      string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
	Config        cfgpkg.Config
	// Ready, when set, receives the bound HTTP address once listening.
	Ready chan<- string
}

// Run opens the store and serves HTTP until ctx is cancelled or a
// termination signal arrives.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}

	logger, err := logpkg.ApplyConfig(opts.Config.Log)
	if err != nil {
		return err
	}
	restore := logpkg.RedirectStdLog(logger)
	defer restore()

	storeDir := filepath.Join(opts.DataDir, "store")
	rt, err := runtime.Open(runtime.Options{DataDir: storeDir, Fsync: opts.Fsync, FsyncInterval: opts.FsyncInterval, Config: opts.Config})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("starting vesta server",
		logpkg.Str("http", opts.HTTPAddr),
		logpkg.Str("data_dir", opts.DataDir),
		logpkg.Str("fsync", opts.Fsync.String()),
		logpkg.Str("treasury", opts.Config.Treasury),
		logpkg.Int("mints", len(opts.Config.Mints)),
	)

	hsrv := httpserver.New(rt, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- hsrv.ListenAndServe(sctx, opts.HTTPAddr) }()
	if opts.Ready != nil {
		go announce(sctx, hsrv, opts.Ready)
	}

	select {
	case err := <-errCh:
		if err != nil && sctx.Err() == nil {
			logger.Error("http server stopped", logpkg.Err(err))
			return err
		}
	case <-sctx.Done():
		// Wait for graceful shutdown before the store closes.
		<-errCh
	}
	hsrv.Close()
	stats := rt.StorageStats()
	logger.Info("vesta server stopped", logpkg.F("commits", stats.Commits))
	return nil
}

// announce polls until the listener is bound.
func announce(ctx context.Context, s *httpserver.Server, ready chan<- string) {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for {
		if a := s.Addr(); a != nil {
			select {
			case ready <- a.String():
			case <-ctx.Done():
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
