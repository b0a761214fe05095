package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/correlation"
	"github.com/yourusername/race-photo-sync/internal/logger"
	"github.com/yourusername/race-photo-sync/internal/metrics"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/photofile"
	"github.com/yourusername/race-photo-sync/internal/queue"
	"github.com/yourusername/race-photo-sync/internal/repository"
	"github.com/yourusername/race-photo-sync/internal/storage"
	"github.com/yourusername/race-photo-sync/internal/vision"
)

// Correlator links a photo draft to a race
type Correlator interface {
	Correlate(ctx context.Context, settings *correlation.Settings, photo *models.Photo, raceclasses []*models.RaceClass) (correlation.Outcome, error)
}

// EventSettings is the per-event configuration used by the sync passes
type EventSettings interface {
	correlation.SettingsReader
	GetFloat(ctx context.Context, eventID, key string) (float64, error)
	Set(ctx context.Context, eventID, key, value string) error
}

// PhotoDirectory is the local folder photos are pushed from
type PhotoDirectory interface {
	ListPhotos() ([]string, error)
	MoveToArchive(filename string) error
}

// CaptureDirectory is the local folder captured video clips are uploaded from
type CaptureDirectory interface {
	ListCaptures() ([]string, error)
	MoveToArchive(filename string) error
	MoveToErrorArchive(filename string) error
}

// Dependencies holds the collaborators of a SyncService. Storage, Queue,
// Analyzer, Files and Captures are optional; a pass that needs a missing one fails.
type Dependencies struct {
	Photos      repository.PhotoRepository
	RaceClasses repository.RaceClassRepository
	Settings    EventSettings
	Correlator  Correlator
	Storage     storage.ObjectStorage
	Queue       queue.MessageQueue
	Analyzer    vision.ImageAnalyzer
	Files       PhotoDirectory
	Captures    CaptureDirectory
}

// SyncService reconciles detections from storage, the message queue or the
// local capture folder into persisted photos
type SyncService struct {
	photos      repository.PhotoRepository
	raceclasses repository.RaceClassRepository
	settings    EventSettings
	correlator  Correlator
	storage     storage.ObjectStorage
	queue       queue.MessageQueue
	analyzer    vision.ImageAnalyzer
	files       PhotoDirectory
	captures    CaptureDirectory
	logger      *logrus.Logger
	syncLogger  *logger.SyncLogger
}

// NewSyncService creates a new sync service
func NewSyncService(deps Dependencies, log *logrus.Logger) *SyncService {
	return &SyncService{
		photos:      deps.Photos,
		raceclasses: deps.RaceClasses,
		settings:    deps.Settings,
		correlator:  deps.Correlator,
		storage:     deps.Storage,
		queue:       deps.Queue,
		analyzer:    deps.Analyzer,
		files:       deps.Files,
		captures:    deps.Captures,
		logger:      log,
		syncLogger:  logger.NewSyncLogger(log),
	}
}

// reconcileOptions describe how detections from one source are persisted
type reconcileOptions struct {
	// archive rewrites urls to the archive folder and moves the blobs after create
	archive bool
	// handled is called for every detection that was persisted or discarded
	handled func(*models.Detection)
}

func (o reconcileOptions) markHandled(d *models.Detection) {
	if o.handled != nil {
		o.handled(d)
	}
}

// PullPhotosFromStorage reconciles the detections waiting in the event DETECT folder
func (s *SyncService) PullPhotosFromStorage(ctx context.Context, eventID string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	m := NewSyncMetrics(SourceStorage)
	detections, err := s.storage.ListDetections(ctx, eventID)
	if err != nil {
		return "", fmt.Errorf("failed to list detections: %w", err)
	}
	m.SetTotal(len(detections))

	if len(detections) == 0 {
		summary := "No photos found."
		m.Finish()
		s.syncLogger.LogSyncCompleted(SourceStorage, eventID, 0, 0, 0, m.Duration, summary)
		return summary, nil
	}

	err = s.reconcile(ctx, eventID, detections, m, reconcileOptions{archive: true})
	summary := fmt.Sprintf("Synchronized photos from cloud storage. %d updated and %d created, %d discarded, %d errors.",
		m.Updated, m.Created, m.Discarded, m.Errors)
	s.finish(eventID, m, summary)
	return summary, err
}

// PullPhotosFromQueue reconciles photo messages published for the event.
// Messages for other events are discarded.
func (s *SyncService) PullPhotosFromQueue(ctx context.Context, eventID string) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("message queue is not configured")
	}

	m := NewSyncMetrics(SourceQueue)
	messages, err := s.queue.Pull(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to pull photo messages: %w", err)
	}
	m.SetTotal(len(messages))

	detections := make([]*models.Detection, 0, len(messages))
	for _, msg := range messages {
		detections = append(detections, msg.ToDetection())
	}

	// failed or unvisited messages stay unacknowledged and are redelivered
	var ackIDs []string
	if len(detections) > 0 {
		err = s.reconcile(ctx, eventID, detections, m, reconcileOptions{
			handled: func(d *models.Detection) {
				ackIDs = append(ackIDs, d.AckID)
			},
		})
	}
	if len(ackIDs) > 0 {
		if ackErr := s.queue.Acknowledge(context.WithoutCancel(ctx), ackIDs); ackErr != nil {
			err = errors.Join(err, ackErr)
		}
	}
	summary := fmt.Sprintf("Pulled %d photo messages: %d created, %d updated, %d discarded, %d errors.",
		len(messages), m.Created, m.Updated, m.Discarded, m.Errors)
	s.finish(eventID, m, summary)
	return summary, err
}

// PushNewPhotosFromFile uploads complete main/crop pairs from the local
// capture folder, analyzes them and publishes one message per pair
func (s *SyncService) PushNewPhotosFromFile(ctx context.Context, eventID string) (string, error) {
	if s.files == nil || s.storage == nil || s.queue == nil || s.analyzer == nil {
		return "", fmt.Errorf("push mode needs a photo directory, object storage, message queue and image analyzer")
	}

	m := NewSyncMetrics(SourceFile)
	files, err := s.files.ListPhotos()
	if err != nil {
		return "", fmt.Errorf("failed to list local photos: %w", err)
	}

	grouping := photofile.Group(files)
	m.SetTotal(grouping.Len())
	s.logger.WithFields(logrus.Fields{
		"event_id": eventID,
		"groups":   grouping.Len(),
	}).Debug("Starting to push photos")

	var ctxErr error
	for _, group := range grouping.Complete() {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}

		if err := s.pushGroup(ctx, eventID, group); err != nil {
			m.RecordError()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"main": group.Main,
				"crop": group.Crop,
			}).Error("Failed to push photo pair")
			continue
		}
		m.RecordPushed()
		metrics.RecordPhotoPushed()
	}

	summary := fmt.Sprintf("Pushed %d photos to pubsub, errors: %d", m.Pushed, m.Errors)
	s.finish(eventID, m, summary)
	return summary, ctxErr
}

// PushCapturedVideos uploads the captured video clips to the event CAPTURE
// folder. Uploaded clips are archived locally; failed ones go to the error archive.
func (s *SyncService) PushCapturedVideos(ctx context.Context, eventID string) (string, error) {
	if s.captures == nil || s.storage == nil {
		return "", fmt.Errorf("capture mode needs a capture directory and object storage")
	}

	m := NewSyncMetrics(SourceCapture)
	files, err := s.captures.ListCaptures()
	if err != nil {
		return "", fmt.Errorf("failed to list captured videos: %w", err)
	}
	m.SetTotal(len(files))

	var ctxErr error
	for _, file := range files {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}

		name := filepath.Base(file)
		url, err := s.storage.UploadFile(ctx, eventID, storage.FolderCapture, file)
		if err != nil {
			m.RecordError()
			s.logger.WithError(err).WithField("file", file).Error("Failed to upload captured video")
			if moveErr := s.captures.MoveToErrorArchive(name); moveErr != nil {
				s.logger.WithError(moveErr).WithField("file", file).Warn("Failed to move video to error archive")
			}
			continue
		}

		if err := s.captures.MoveToArchive(name); err != nil {
			s.logger.WithError(err).WithField("file", file).Warn("Failed to archive local video")
		}
		m.RecordPushed()
		metrics.RecordCaptureUploaded()
		s.logger.WithField("url", url).Debug("Uploaded captured video")
	}

	summary := fmt.Sprintf("Pushed %d videos to cloud bucket, errors: %d", m.Pushed, m.Errors)
	s.finish(eventID, m, summary)
	return summary, ctxErr
}

func (s *SyncService) pushGroup(ctx context.Context, eventID string, group photofile.PhotoGroup) error {
	mainURL, err := s.storage.UploadFile(ctx, eventID, storage.FolderPhotos, group.Main)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", group.Main, err)
	}
	cropURL, err := s.storage.UploadFile(ctx, eventID, storage.FolderPhotos, group.Crop)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", group.Crop, err)
	}

	ai, err := s.analyze(ctx, eventID, mainURL, cropURL)
	if err != nil {
		return err
	}

	description, err := photofile.ReadImageDescription(group.Main)
	if err != nil {
		s.logger.WithError(err).WithField("file", group.Main).Warn("Could not read image description")
		description = map[string]interface{}{}
	}

	messageID, err := s.queue.Publish(ctx, &models.PhotoMessage{
		AIInformation: ai,
		CropURL:       cropURL,
		EventID:       eventID,
		PhotoInfo:     description,
		PhotoURL:      mainURL,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message for %s: %w", mainURL, err)
	}

	for _, file := range []string{group.Main, group.Crop} {
		if err := s.files.MoveToArchive(filepath.Base(file)); err != nil {
			s.logger.WithError(err).WithField("file", file).Warn("Failed to archive local photo")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"message_id": messageID,
		"photo_url":  mainURL,
	}).Debug("Published photo message")
	return nil
}

// reconcile creates or updates a photo per detection. Per-item failures are
// counted and logged; the batch stops early only when ctx is done.
func (s *SyncService) reconcile(ctx context.Context, eventID string, detections []*models.Detection, m *SyncMetrics, opts reconcileOptions) error {
	settings, err := correlation.LoadSettings(ctx, s.settings, eventID)
	if err != nil {
		return fmt.Errorf("failed to load matching settings: %w", err)
	}

	raceclasses, err := s.raceclasses.GetByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to get raceclasses: %w", err)
	}

	var latest string
	var ctxErr error
	for _, detection := range detections {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}

		if detection.EventID != eventID {
			m.RecordDiscarded()
			s.syncLogger.LogDetectionDiscarded(detection.MainURL, detection.EventID, eventID)
			opts.markHandled(detection)
			continue
		}

		created, err := s.reconcileDetection(ctx, eventID, settings, raceclasses, detection, opts)
		if created != nil {
			m.RecordCreated()
			if latest == "" {
				latest = created.GBaseURL
			}
		}
		if err != nil {
			m.RecordError()
			s.logger.WithError(err).WithField("main_url", detection.MainURL).Error("Failed to reconcile detection")
			continue
		}
		if created == nil {
			m.RecordUpdated()
		}
		opts.markHandled(detection)
	}

	if latest != "" {
		if err := s.settings.Set(ctx, eventID, models.SettingLatestPhoto, latest); err != nil {
			s.logger.WithError(err).Warn("Failed to record latest photo")
		}
	}

	return ctxErr
}

// reconcileDetection returns the created photo, or nil when an existing photo
// was updated. A created photo is returned even when archiving it fails.
func (s *SyncService) reconcileDetection(
	ctx context.Context,
	eventID string,
	settings *correlation.Settings,
	raceclasses []*models.RaceClass,
	detection *models.Detection,
	opts reconcileOptions,
) (*models.Photo, error) {
	existing, err := s.findExisting(ctx, detection.MainURL, opts)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, s.updateFromDetection(ctx, existing, detection, opts)
	}

	photo := newPhotoDraft(eventID, settings, detection)

	if photo.AIInformation.IsEmpty() && detection.CropURL != "" {
		ai, err := s.analyze(ctx, eventID, detection.MainURL, detection.CropURL)
		if err != nil {
			return nil, err
		}
		photo.AIInformation = ai
	}

	if photo.HasAIInformation() {
		outcome, err := s.correlator.Correlate(ctx, settings, photo, raceclasses)
		if err != nil {
			return nil, fmt.Errorf("failed to correlate %s: %w", photo.Name, err)
		}
		metrics.RecordCorrelation(outcome.String())
	}

	if opts.archive {
		photo.GBaseURL = storage.ArchiveURL(photo.GBaseURL)
		photo.GCropURL = storage.ArchiveURL(photo.GCropURL)
	}

	id, err := s.photos.Create(ctx, photo)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo %s: %w", photo.Name, err)
	}
	photo.ID = id

	if photo.IsLinked() {
		s.syncLogger.LogPhotoLinked(id.String(), photo.RaceID, photo.RaceClass, photo.BibList, photo.Confidence)
	}

	// the photo is stored either way; a failed move is retried by the next pass
	// through the archive url lookup
	if opts.archive {
		if err := s.archiveDetection(ctx, eventID, detection); err != nil {
			return photo, err
		}
	}

	return photo, nil
}

// findExisting looks a photo up by its detection url. Archived sources are also
// looked up by the archive url, which is what a previous create stored.
func (s *SyncService) findExisting(ctx context.Context, mainURL string, opts reconcileOptions) (*models.Photo, error) {
	urls := []string{mainURL}
	if opts.archive {
		urls = append(urls, storage.ArchiveURL(mainURL))
	}

	for _, url := range urls {
		photo, err := s.photos.GetByBaseURL(ctx, url)
		if err == nil {
			return photo, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up photo %s: %w", url, err)
		}
	}
	return nil, nil
}

// updateFromDetection refreshes name, urls and crossing-point flags. Race
// linkage, bibs and confidence are left as they are.
func (s *SyncService) updateFromDetection(ctx context.Context, photo *models.Photo, detection *models.Detection, opts reconcileOptions) error {
	photo.Name = path.Base(detection.MainURL)
	photo.IsPhotoFinish, photo.IsStartRegistration = correlation.ClassifyCrossingPoint(detection.CrossingPoint)

	archived := opts.archive && photo.GBaseURL == storage.ArchiveURL(detection.MainURL)
	if archived {
		photo.GCropURL = storage.ArchiveURL(detection.CropURL)
	} else {
		photo.GBaseURL = detection.MainURL
		photo.GCropURL = detection.CropURL
	}

	if err := s.photos.Update(ctx, photo.ID, photo); err != nil {
		return fmt.Errorf("failed to update photo %s: %w", photo.ID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"photo_id": photo.ID.String(),
		"name":     photo.Name,
	}).Debug("Updated photo")

	// a photo already stored with the archive url means the earlier move failed
	if archived {
		return s.archiveDetection(ctx, photo.EventID, detection)
	}
	return nil
}

func (s *SyncService) archiveDetection(ctx context.Context, eventID string, detection *models.Detection) error {
	if err := s.storage.MoveToArchive(ctx, eventID, path.Base(detection.MainURL)); err != nil {
		return fmt.Errorf("failed to archive detection: %w", err)
	}
	if detection.CropURL != "" {
		if err := s.storage.MoveToArchive(ctx, eventID, path.Base(detection.CropURL)); err != nil {
			return fmt.Errorf("failed to archive detection crop: %w", err)
		}
	}
	return nil
}

func (s *SyncService) analyze(ctx context.Context, eventID, mainURL, cropURL string) (*models.AIInformation, error) {
	if s.analyzer == nil {
		return nil, fmt.Errorf("image analyzer is not configured")
	}

	limit, err := s.settings.GetFloat(ctx, eventID, models.SettingConfidenceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", models.SettingConfidenceLimit, err)
	}

	start := time.Now()
	ai, err := s.analyzer.Analyze(ctx, mainURL, cropURL, limit)
	metrics.RecordVisionAnalysis(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to analyze %s: %w", mainURL, err)
	}
	return ai, nil
}

func (s *SyncService) finish(eventID string, m *SyncMetrics, summary string) {
	m.Finish()
	s.syncLogger.LogSyncCompleted(m.Source, eventID, m.Created, m.Updated, m.Errors, m.Duration, summary)
	s.logger.Debug(m.String())
}

// newPhotoDraft builds an unlinked photo with zero confidence from a detection
func newPhotoDraft(eventID string, settings *correlation.Settings, detection *models.Detection) *models.Photo {
	isFinish, isStart := correlation.ClassifyCrossingPoint(detection.CrossingPoint)
	return &models.Photo{
		Name:                path.Base(detection.MainURL),
		EventID:             eventID,
		CreationTime:        settings.Normalizer.Normalize(detection.CaptureTimestamp),
		IsPhotoFinish:       isFinish,
		IsStartRegistration: isStart,
		AIInformation:       detection.AIInformation,
		Information:         detection.Metadata,
		BibList:             []int{},
		ClubList:            []string{},
		Confidence:          models.ConfidenceNone,
		GBaseURL:            detection.MainURL,
		GCropURL:            detection.CropURL,
	}
}
