package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sermondex/internal/app"
	"github.com/kailas-cloud/sermondex/internal/config"
	logpkg "github.com/kailas-cloud/sermondex/internal/logger"
)

// loadConfig reads the config selected by the global flags and applies
// CLI overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(c.String("env"))
	}
	if err != nil {
		return config.Config{}, err //nolint:wrapcheck // already describes the file
	}
	if dir := c.String("cache-dir"); dir != "" {
		cfg.Embedding.Cache.Backend = config.CacheBadger
		cfg.Embedding.Cache.Dir = dir
	}
	return cfg, nil
}

// withApp builds the application for one command and closes it afterwards.
func withApp(fn func(ctx context.Context, c *cli.Context, a *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		logger, err := logpkg.New("cli", c.String("log-level"))
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		ctx := logpkg.Into(c.Context, logger.With(zap.String("command", c.Command.Name)))
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err //nolint:wrapcheck // composition errors name their component
		}
		defer func() { _ = a.Close() }()

		return fn(ctx, c, a)
	}
}
