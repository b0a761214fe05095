// Package main provides the entry point for the race photo sync service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/race-photo-sync/internal/config"
	"github.com/yourusername/race-photo-sync/internal/health"
	"github.com/yourusername/race-photo-sync/internal/logger"
	"github.com/yourusername/race-photo-sync/internal/metrics"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/photofile"
	"github.com/yourusername/race-photo-sync/internal/scheduler"
	"github.com/yourusername/race-photo-sync/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const eventRetryInterval = 5 * time.Second

var (
	configFile string
	eventFlag  string
	modeFlag   string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	syncCmd.Flags().StringVarP(&eventFlag, "event", "e", "", "Event id (defaults to event selection)")
	syncCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "Sync mode: push, pull, storage or capture (defaults to service.default_mode)")

	rootCmd.AddCommand(runCmd, syncCmd, groupCmd, migrateCmd)
}

var rootCmd = &cobra.Command{
	Use:   "photo-sync",
	Short: "Race photo sync service",
	Long:  `Links captured race photos to heats and contestants and keeps them in sync with cloud storage.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == groupCmd.Name() {
			appLog = logger.NewLogger("info")
			return nil
		}
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the integration service loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runService(cmd.Context())
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync pass and print its summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context())
	},
}

var groupCmd = &cobra.Command{
	Use:   "group [directory]",
	Short: "Show how the photos in a directory pair into main and crop images",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printGroups(args[0])
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), cfg, appLog)
		if err != nil {
			return err
		}
		defer app.Close()
		if err := app.db.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		appLog.Info("Database schema is up to date")
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return config.ValidateEnvironment(cfg)
}

func runService(ctx context.Context) error {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"mode":        cfg.Service.DefaultMode,
	}).Info("Race photo sync service starting")

	app, err := newApp(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer app.Close()

	sched := scheduler.NewScheduler(appLog)

	var healthServer *health.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		healthServer = health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        strconv.Itoa(cfg.Metrics.Port),
			Logger:      appLog,
			Checks: map[string]health.Check{
				"database":  app.db.HealthCheck,
				"scheduler": schedulerCheck(sched),
			},
			Metrics:     metrics.Handler(),
			MetricsPath: cfg.Metrics.Path,
		})
		if err := healthServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start health server: %w", err)
		}
	}

	event, err := waitForEvent(ctx, app)
	if err != nil {
		return err
	}

	runner := service.NewRunner(app.syncService, app.settings, event.ID, &cfg.Service, appLog)
	if err := runner.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := runner.Stop(context.Background()); err != nil {
			appLog.WithError(err).Error("Failed to mark service unavailable")
		}
	}()

	timeout := time.Duration(cfg.Service.CycleTimeoutSeconds) * time.Second
	_, err = sched.ScheduleEvery("integration-service", cfg.PollInterval(), timeout, func(jobCtx context.Context) error {
		err := runner.Tick(jobCtx)
		_, _, ratio := app.settings.Stats()
		metrics.UpdateSettingsCacheHitRatio(ratio)
		return err
	})
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}

	if healthServer != nil {
		healthServer.SetReady(true)
	}
	appLog.WithFields(logrus.Fields{
		"event_id":      event.ID,
		"event":         event.Name,
		"poll_interval": cfg.PollInterval().String(),
	}).Info("Integration service is running")

	<-ctx.Done()
	appLog.Info("Shutdown signal received")

	if healthServer != nil {
		healthServer.SetReady(false)
	}
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}
	return nil
}

func schedulerCheck(sched *scheduler.Scheduler) health.Check {
	return func(ctx context.Context) error {
		if !sched.IsRunning() {
			return errors.New("scheduler is not running")
		}
		return nil
	}
}

// waitForEvent retries event selection until an event is found or ctx is done
func waitForEvent(ctx context.Context, app *App) (*models.Event, error) {
	for {
		event, err := service.SelectEvent(ctx, app.repos.Event, cfg.Event.ID)
		if err == nil {
			appLog.WithFields(logrus.Fields{
				"event_id": event.ID,
				"event":    event.Name,
				"date":     event.Date,
			}).Info("Integration service is ready")
			return event, nil
		}

		appLog.WithError(err).Info("Integration service is waiting for an event to work on")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(eventRetryInterval):
		}
	}
}

func runOnce(ctx context.Context) error {
	app, err := newApp(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer app.Close()

	eventID := eventFlag
	if eventID == "" {
		event, err := service.SelectEvent(ctx, app.repos.Event, cfg.Event.ID)
		if err != nil {
			return err
		}
		eventID = event.ID
	}

	mode := modeFlag
	if mode == "" {
		mode = cfg.Service.DefaultMode
	}

	var summary string
	switch config.NormalizeServiceMode(mode) {
	case config.ServiceModePush:
		summary, err = app.syncService.PushNewPhotosFromFile(ctx, eventID)
	case config.ServiceModePull:
		summary, err = app.syncService.PullPhotosFromQueue(ctx, eventID)
	case config.ServiceModeStorage:
		summary, err = app.syncService.PullPhotosFromStorage(ctx, eventID)
	case config.ServiceModeCapture:
		summary, err = app.syncService.PushCapturedVideos(ctx, eventID)
	default:
		return fmt.Errorf("invalid service mode: %q, use push, pull, storage or capture", mode)
	}

	fmt.Println(summary)
	return err
}

func printGroups(dir string) error {
	photos, err := photofile.NewDirectory(dir, appLog).ListPhotos()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(photos))
	for _, p := range photos {
		names = append(names, filepath.Base(p))
	}

	grouping := photofile.Group(names)
	complete := 0
	for _, key := range grouping.Keys() {
		group, _ := grouping.Get(key)
		status := "incomplete"
		if group.Complete() {
			status = "complete"
			complete++
		}
		fmt.Printf("%-40s main=%-40s crop=%-40s %s\n", key, group.Main, group.Crop, status)
	}
	fmt.Printf("\n%d groups, %d complete\n", grouping.Len(), complete)
	return nil
}
