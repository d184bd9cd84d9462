package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Digital-Shane/media-resolver/internal/config"
	"github.com/Digital-Shane/media-resolver/internal/log"
	"github.com/Digital-Shane/media-resolver/internal/metadata"
	"github.com/Digital-Shane/media-resolver/internal/migrate"
	"github.com/Digital-Shane/media-resolver/internal/provider/legacy"
	"github.com/Digital-Shane/media-resolver/internal/provider/proxy"
	"github.com/Digital-Shane/media-resolver/internal/provider/tmdb"
	"github.com/Digital-Shane/media-resolver/internal/search"
)

// app holds the wired components for one command invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer

	metadata *metadata.Service
	resolver *search.Resolver
	migrator *migrate.Migrator
}

// loadApp reads configuration and builds every component. The gateway and
// the image rewriter share one rotator so a request and its poster land on
// the same proxy position.
func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, closer, err := log.New(log.Options{
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		File:          cfg.LogFile,
		RetentionDays: cfg.LogRetentionDays,
	})
	if err != nil {
		return nil, err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.closer = closer
	return a, nil
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	rot := proxy.New(cfg)

	gateway, err := tmdb.NewGateway(tmdb.GatewayConfig{
		Token:       cfg.TMDBAPIToken,
		BaseURL:     cfg.TMDBBaseURL,
		FallbackURL: cfg.TMDBFallbackURL,
		Locale:      cfg,
		Rotator:     rot,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog gateway: %w (set tmdb_api_token or %s_TMDB_API_TOKEN)", err, config.EnvPrefix)
	}
	client := tmdb.NewClient(gateway).WithWorkers(cfg.TMDBWorkerCount)

	assembler := metadata.NewAssembler(rot)
	legacyClient := legacy.New(legacy.Config{
		BaseURL: cfg.LegacyBaseURL,
		Locale:  cfg,
		Logger:  logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		metadata: metadata.NewService(client, assembler, logger),
		resolver: search.NewResolver(client, assembler, logger),
		migrator: migrate.New(client, legacyClient, logger),
	}, nil
}

func (a *app) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
