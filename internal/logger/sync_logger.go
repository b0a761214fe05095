package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SyncLogger provides dedicated logging for photo synchronization.
type SyncLogger struct {
	*logrus.Entry
}

// NewSyncLogger creates a new sync logger.
func NewSyncLogger(baseLogger *logrus.Logger) *SyncLogger {
	return &SyncLogger{
		Entry: baseLogger.WithField("component", "sync"),
	}
}

// LogPhotoLinked records a photo that was attached to a race.
func (sl *SyncLogger) LogPhotoLinked(photoID, raceID, raceClass string, bibs []int, confidence int) {
	sl.WithFields(logrus.Fields{
		"photo_id":   photoID,
		"race_id":    raceID,
		"raceclass":  raceClass,
		"bibs":       bibs,
		"confidence": confidence,
	}).Info("Photo linked to race")
}

// LogDetectionDiscarded records a detection skipped because it belongs to another event.
func (sl *SyncLogger) LogDetectionDiscarded(mainURL, detectionEvent, activeEvent string) {
	sl.WithFields(logrus.Fields{
		"main_url":        mainURL,
		"detection_event": detectionEvent,
		"active_event":    activeEvent,
	}).Warn("Detection discarded, event mismatch")
}

// LogSyncCompleted records the summary of one sync pass.
func (sl *SyncLogger) LogSyncCompleted(source, eventID string, created, updated, errors int, duration time.Duration, summary string) {
	sl.WithFields(logrus.Fields{
		"source":      source,
		"event_id":    eventID,
		"created":     created,
		"updated":     updated,
		"errors":      errors,
		"duration_ms": duration.Milliseconds(),
	}).Info(summary)
}

// LogServiceStatus records a periodic heartbeat of the service loop.
func (sl *SyncLogger) LogServiceStatus(mode string, available, running bool, ticks int) {
	sl.WithFields(logrus.Fields{
		"mode":      mode,
		"available": available,
		"running":   running,
		"ticks":     ticks,
	}).Info("Integration service status")
}
