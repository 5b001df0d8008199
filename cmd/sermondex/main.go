// Command sermondex serves the sermon search and Q&A HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/sermondex/internal/app"
	"github.com/kailas-cloud/sermondex/internal/config"
	logpkg "github.com/kailas-cloud/sermondex/internal/logger"
	chiTransport "github.com/kailas-cloud/sermondex/internal/transport/chi"
	"github.com/kailas-cloud/sermondex/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sermondex:", err)
		os.Exit(1)
	}
}

func run() error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sermondex",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("llm", cfg.LLM.Enabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err //nolint:wrapcheck // composition errors name their component
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Close resources", zap.Error(err))
		}
	}()
	if err := a.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("prepare indexes: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           newHandler(a, &cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		return srv.Shutdown(sctx) //nolint:wrapcheck // reported as-is
	})
	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck // already wrapped above
	}
	logger.Info("Server stopped")
	return nil
}

func newHandler(a *app.App, cfg *config.Config, logger *zap.Logger) http.Handler {
	services := chiTransport.Services{
		Ingest:      a.Ingest,
		Transcripts: a.Transcripts,
		Chunks:      a.Chunks,
		Search:      a.Search,
		Verses:      a.Bible,
		Health:      a.Health,
	}
	// a nil *answeruc.Service must stay a nil interface
	if a.Answer != nil {
		services.Answer = a.Answer
	}
	return chiTransport.NewRouter(chiTransport.NewServer(services, logger), chiTransport.RouterConfig{
		APIKeys:      cfg.Auth.APIKeys,
		MaxBodyBytes: int64(cfg.HTTP.MaxBodyMB) << 20,
	}, logger)
}
