package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-photo-sync/internal/config"
	"github.com/yourusername/race-photo-sync/internal/correlation"
	"github.com/yourusername/race-photo-sync/internal/database"
	"github.com/yourusername/race-photo-sync/internal/eventconfig"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/photofile"
	"github.com/yourusername/race-photo-sync/internal/queue"
	"github.com/yourusername/race-photo-sync/internal/repository"
	"github.com/yourusername/race-photo-sync/internal/service"
	"github.com/yourusername/race-photo-sync/internal/storage"
	"github.com/yourusername/race-photo-sync/internal/vision"
)

// App holds the wired dependencies shared by the commands
type App struct {
	db          *database.DB
	repos       *repository.Repositories
	settings    *eventconfig.Reader
	analyzer    *vision.VisionAnalyzer
	syncService *service.SyncService
	logger      *logrus.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	db, err := database.Initialize(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	// service flags are toggled by operators and must never be served stale
	settings := eventconfig.NewReader(repos.EventSetting, cfg.SettingsTTL(), logger,
		models.SettingServiceStart,
		models.SettingServiceRunning,
		models.SettingServiceAvailable,
		models.SettingServiceMode,
		models.SettingLatestPhoto,
	)

	objects, err := storage.NewGCSStorage(ctx, &cfg.Google, nil, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	messages, err := queue.NewPubSubQueue(ctx, &cfg.Google, nil, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	analyzer, err := vision.NewVisionAnalyzer(ctx, &cfg.Google, &cfg.Vision, nil, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	syncService := service.NewSyncService(service.Dependencies{
		Photos:      repos.Photo,
		RaceClasses: repos.RaceClass,
		Settings:    settings,
		Correlator:  correlation.NewEngine(repos.StartEntry, repos.Race, repos.Contestant, logger),
		Storage:     objects,
		Queue:       messages,
		Analyzer:    analyzer,
		Files:       photofile.NewDirectory(cfg.Service.PhotosPath, logger),
		Captures:    photofile.NewDirectory(cfg.Service.CapturesPath, logger),
	}, logger)

	return &App{
		db:          db,
		repos:       repos,
		settings:    settings,
		analyzer:    analyzer,
		syncService: syncService,
		logger:      logger,
	}, nil
}

// Close releases the database pool and image download connections
func (a *App) Close() {
	if err := a.analyzer.Close(); err != nil {
		a.logger.WithError(err).Debug("Failed to close image fetcher")
	}
	a.db.Close()
}
