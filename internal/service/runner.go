package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/config"
	"github.com/yourusername/race-photo-sync/internal/logger"
	"github.com/yourusername/race-photo-sync/internal/metrics"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/repository"
)

// Syncer runs one sync pass for an event and returns its summary
type Syncer interface {
	PullPhotosFromStorage(ctx context.Context, eventID string) (string, error)
	PullPhotosFromQueue(ctx context.Context, eventID string) (string, error)
	PushNewPhotosFromFile(ctx context.Context, eventID string) (string, error)
	PushCapturedVideos(ctx context.Context, eventID string) (string, error)
}

// ServiceFlags are the event settings operators use to start and stop the service
type ServiceFlags interface {
	GetString(ctx context.Context, eventID, key string) (string, error)
	GetBool(ctx context.Context, eventID, key string) (bool, error)
	SetBool(ctx context.Context, eventID, key string, value bool) error
}

// Runner drives the integration service loop for one event. Each tick reads
// the start flag and mode from the event settings and runs at most one pass.
type Runner struct {
	syncer         Syncer
	flags          ServiceFlags
	eventID        string
	defaultMode    string
	statusInterval int
	ticks          int
	logger         *logrus.Logger
	syncLogger     *logger.SyncLogger
}

// NewRunner creates a service loop for eventID
func NewRunner(syncer Syncer, flags ServiceFlags, eventID string, cfg *config.ServiceConfig, log *logrus.Logger) *Runner {
	interval := cfg.StatusInterval
	if interval <= 0 {
		interval = 60
	}
	return &Runner{
		syncer:         syncer,
		flags:          flags,
		eventID:        eventID,
		defaultMode:    config.NormalizeServiceMode(cfg.DefaultMode),
		statusInterval: interval,
		ticks:          interval,
		logger:         log,
		syncLogger:     logger.NewSyncLogger(log),
	}
}

// EventID returns the event the runner works on
func (r *Runner) EventID() string {
	return r.eventID
}

// Start marks the service as available
func (r *Runner) Start(ctx context.Context) error {
	if err := r.flags.SetBool(ctx, r.eventID, models.SettingServiceAvailable, true); err != nil {
		return fmt.Errorf("failed to mark service available: %w", err)
	}
	r.logger.WithField("event_id", r.eventID).Info("Integration service is ready")
	return nil
}

// Stop marks the service as unavailable
func (r *Runner) Stop(ctx context.Context) error {
	if err := r.flags.SetBool(ctx, r.eventID, models.SettingServiceAvailable, false); err != nil {
		return fmt.Errorf("failed to mark service unavailable: %w", err)
	}
	r.logger.Info("Goodbye!")
	return nil
}

// Tick runs one iteration of the service loop. A failed pass clears both the
// running and the start flag so the service waits for an operator restart.
func (r *Runner) Tick(ctx context.Context) error {
	start, err := r.flags.GetBool(ctx, r.eventID, models.SettingServiceStart)
	if err != nil {
		return fmt.Errorf("failed to read service start flag: %w", err)
	}
	mode := r.mode(ctx)

	var passErr error
	if start {
		passErr = r.runPass(ctx, mode)
	} else if err := r.flags.SetBool(ctx, r.eventID, models.SettingServiceRunning, false); err != nil {
		r.logger.WithError(err).Warn("Failed to reset running flag")
	}

	if r.ticks >= r.statusInterval {
		r.syncLogger.LogServiceStatus(mode, true, start, r.ticks)
		r.ticks = 0
	} else {
		r.ticks++
	}

	return passErr
}

func (r *Runner) runPass(ctx context.Context, mode string) error {
	if err := r.flags.SetBool(ctx, r.eventID, models.SettingServiceRunning, true); err != nil {
		return fmt.Errorf("failed to set running flag: %w", err)
	}
	metrics.SetServiceRunning(true)
	defer metrics.SetServiceRunning(false)

	_, err := r.dispatch(ctx, mode)
	if err != nil {
		r.logger.WithError(err).WithField("mode", mode).Error("Error in integration service. Stopping.")
		if setErr := r.flags.SetBool(ctx, r.eventID, models.SettingServiceStart, false); setErr != nil {
			r.logger.WithError(setErr).Warn("Failed to reset start flag")
		}
	}

	if setErr := r.flags.SetBool(ctx, r.eventID, models.SettingServiceRunning, false); setErr != nil {
		r.logger.WithError(setErr).Warn("Failed to reset running flag")
	}
	return err
}

func (r *Runner) dispatch(ctx context.Context, mode string) (string, error) {
	switch mode {
	case config.ServiceModePush:
		return r.syncer.PushNewPhotosFromFile(ctx, r.eventID)
	case config.ServiceModePull:
		return r.syncer.PullPhotosFromQueue(ctx, r.eventID)
	case config.ServiceModeStorage:
		return r.syncer.PullPhotosFromStorage(ctx, r.eventID)
	case config.ServiceModeCapture:
		return r.syncer.PushCapturedVideos(ctx, r.eventID)
	default:
		return "", fmt.Errorf("invalid service mode: %q, use push, pull, storage or capture", mode)
	}
}

// mode reads the service mode setting, falling back to the configured default
func (r *Runner) mode(ctx context.Context) string {
	mode, err := r.flags.GetString(ctx, r.eventID, models.SettingServiceMode)
	if err != nil || mode == "" {
		return r.defaultMode
	}
	return config.NormalizeServiceMode(mode)
}

// SelectEvent picks the event to work on. A single stored event always wins;
// otherwise the configured id is used when it is set, and the first event when it is not.
func SelectEvent(ctx context.Context, events repository.EventRepository, configuredID string) (*models.Event, error) {
	all, err := events.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	switch {
	case len(all) == 1:
		return all[0], nil
	case len(all) == 0:
		if configuredID == "" {
			return nil, fmt.Errorf("no events found and no event id configured: %w", models.ErrNotFound)
		}
		return &models.Event{ID: configuredID}, nil
	}

	for _, event := range all {
		if event.ID == configuredID {
			return event, nil
		}
	}
	if configuredID != "" {
		return &models.Event{ID: configuredID}, nil
	}
	return all[0], nil
}
