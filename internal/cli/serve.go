package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindweave/mindweave/internal/server"
	"github.com/mindweave/mindweave/pkg/cache"
	"github.com/mindweave/mindweave/pkg/config"
	"github.com/mindweave/mindweave/pkg/pipeline"
	"github.com/mindweave/mindweave/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mindweave HTTP API server",
		Long: `Run the mindweave HTTP API server.

The server exposes map generation and layout over HTTP. Cache and store
backends are selected in the config file: the cache can be file-based,
Redis, or disabled; documents can live in memory, on disk, or in MongoDB.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: XDG config dir)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, configPath string) error {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	artifactCache, err := buildCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}

	docs, err := buildStore(ctx, cfg)
	if err != nil {
		_ = artifactCache.Close()
		return fmt.Errorf("initialize store: %w", err)
	}
	defer docs.Close()

	// Server cache entries live in their own namespace so a shared Redis
	// instance never collides with keys written by the CLI.
	keyer := cache.NewScopedKeyer(nil, "server:")
	runner := pipeline.NewRunner(artifactCache, keyer, c.Logger)
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:    cfg.Server.Addr,
		Runner:  runner,
		Store:   docs,
		Logger:  c.Logger,
		APIKey:  cfg.GenAI.APIKey,
		BaseURL: cfg.GenAI.BaseURL,
	})

	return srv.Run(ctx)
}

// buildCache constructs the configured cache backend.
func buildCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// buildStore constructs the configured document store backend.
func buildStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "file":
		dir := cfg.Store.Dir
		if dir == "" {
			var err error
			dir, err = dataDir()
			if err != nil {
				return nil, err
			}
		}
		return store.NewFileStore(dir)
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.Store.MongoURI})
	default:
		return store.NewMemoryStore(), nil
	}
}
