// Package storage keeps captured photos in a Google Cloud Storage bucket.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/config"
	"github.com/yourusername/race-photo-sync/internal/gcloud"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/photofile"
	gcs "google.golang.org/api/storage/v1"
)

// Bucket folders below the event prefix
const (
	FolderDetect        = "DETECT"
	FolderDetectArchive = "DETECT_ARCHIVE"
	FolderPhotos        = "photos"
	FolderCapture       = "CAPTURE"
)

// ObjectStorage stores photo files and exposes pending detections
type ObjectStorage interface {
	UploadFile(ctx context.Context, eventID, folder, localPath string) (string, error)
	ListDetections(ctx context.Context, eventID string) ([]*models.Detection, error)
	MoveToArchive(ctx context.Context, eventID, name string) error
}

// GCSStorage implements ObjectStorage on the Cloud Storage JSON API
type GCSStorage struct {
	service *gcs.Service
	bucket  string
	server  string
	logger  *logrus.Logger
}

// NewGCSStorage creates a storage client for the configured bucket.
// httpClient is optional and bypasses authentication when set.
func NewGCSStorage(ctx context.Context, cfg *config.GoogleConfig, httpClient *http.Client, logger *logrus.Logger) (*GCSStorage, error) {
	if cfg.StorageBucket == "" || cfg.StorageServer == "" {
		return nil, fmt.Errorf("storage bucket and storage server are required")
	}

	service, err := gcs.NewService(ctx, gcloud.ClientOptions(cfg, cfg.Endpoint, httpClient)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStorage{
		service: service,
		bucket:  cfg.StorageBucket,
		server:  strings.TrimRight(cfg.StorageServer, "/"),
		logger:  logger,
	}, nil
}

// ObjectName returns the bucket object name of a file in an event folder
func ObjectName(eventID, folder, name string) string {
	return path.Join(eventID, folder, name)
}

// ObjectURL returns the public URL of an object
func (s *GCSStorage) ObjectURL(object string) string {
	return s.server + "/" + s.bucket + "/" + object
}

// ArchiveURL rewrites a detection URL to its archive location
func ArchiveURL(url string) string {
	return strings.Replace(url, "/"+FolderDetect+"/", "/"+FolderDetectArchive+"/", 1)
}

// UploadFile uploads a local file into an event folder and returns its URL
func (s *GCSStorage) UploadFile(ctx context.Context, eventID, folder, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	object := ObjectName(eventID, folder, filepath.Base(localPath))
	_, err = s.service.Objects.Insert(s.bucket, &gcs.Object{Name: object}).
		Media(file).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", object, err)
	}

	s.logger.WithField("object", object).Debug("Uploaded file to storage")
	return s.ObjectURL(object), nil
}

// ListDetections lists the detections waiting in the event DETECT folder.
// Crops are paired with their main image; a crop without a main image is skipped.
func (s *GCSStorage) ListDetections(ctx context.Context, eventID string) ([]*models.Detection, error) {
	prefix := ObjectName(eventID, FolderDetect, "") + "/"

	var names []string
	metadata := make(map[string]map[string]string)

	err := s.service.Objects.List(s.bucket).Prefix(prefix).Pages(ctx, func(objects *gcs.Objects) error {
		for _, obj := range objects.Items {
			name := strings.TrimPrefix(obj.Name, prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			names = append(names, name)
			metadata[name] = obj.Metadata
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}

	grouping := photofile.Group(names)
	detections := make([]*models.Detection, 0, grouping.Len())
	for _, key := range grouping.Keys() {
		group, _ := grouping.Get(key)
		if group.Main == "" {
			s.logger.WithField("crop", group.Crop).Debug("Crop without main image, skipping")
			continue
		}

		cropURL := ""
		if group.Crop != "" {
			cropURL = s.ObjectURL(prefix + group.Crop)
		}
		detections = append(detections, models.NewDetection(
			eventID, s.ObjectURL(prefix+group.Main), cropURL, copyMetadata(metadata[group.Main]),
		))
	}

	return detections, nil
}

// MoveToArchive moves a file from the event DETECT folder to DETECT_ARCHIVE
func (s *GCSStorage) MoveToArchive(ctx context.Context, eventID, name string) error {
	src := ObjectName(eventID, FolderDetect, name)
	dst := ObjectName(eventID, FolderDetectArchive, name)

	if _, err := s.service.Objects.Copy(s.bucket, src, s.bucket, dst, &gcs.Object{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to copy %s to archive: %w", src, err)
	}
	if err := s.service.Objects.Delete(s.bucket, src).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete %s after archiving: %w", src, err)
	}

	return nil
}

func copyMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
