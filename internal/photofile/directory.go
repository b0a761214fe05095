package photofile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

const (
	archiveDirName      = "archive"
	errorArchiveDirName = "error_archive"
)

var photoExtensions = map[string]bool{
	".jpg": true,
	".png": true,
}

var captureExtensions = map[string]bool{
	".mp4": true,
}

// Directory is the local folder the capture software writes photos and video clips to
type Directory struct {
	path             string
	archivePath      string
	errorArchivePath string
	logger           *logrus.Logger
}

// NewDirectory creates a directory adapter rooted at path
func NewDirectory(path string, logger *logrus.Logger) *Directory {
	return &Directory{
		path:             path,
		archivePath:      filepath.Join(path, archiveDirName),
		errorArchivePath: filepath.Join(path, errorArchiveDirName),
		logger:           logger,
	}
}

// Path returns the directory root
func (d *Directory) Path() string {
	return d.path
}

// ListPhotos returns the full path of every photo in the directory, skipping config snapshots
func (d *Directory) ListPhotos() ([]string, error) {
	return d.list(func(name string) bool {
		return photoExtensions[strings.ToLower(filepath.Ext(name))] && !strings.Contains(name, "_config")
	})
}

// ListCaptures returns the full path of every captured video clip in the directory
func (d *Directory) ListCaptures() ([]string, error) {
	return d.list(func(name string) bool {
		return captureExtensions[strings.ToLower(filepath.Ext(name))]
	})
}

func (d *Directory) list(keep func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", d.path, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(d.path, entry.Name()))
	}
	return files, nil
}

// MoveToArchive moves a file into the archive folder, creating it if needed
func (d *Directory) MoveToArchive(filename string) error {
	return d.moveInto(d.archivePath, filename)
}

// MoveToErrorArchive moves a file that could not be processed into the error archive folder
func (d *Directory) MoveToErrorArchive(filename string) error {
	return d.moveInto(d.errorArchivePath, filename)
}

func (d *Directory) moveInto(folder, filename string) error {
	source := filepath.Join(d.path, filepath.Base(filename))
	destination := filepath.Join(folder, filepath.Base(filename))

	err := os.Rename(source, destination)
	if errors.Is(err, os.ErrNotExist) {
		if _, statErr := os.Stat(source); statErr != nil {
			return fmt.Errorf("failed to move %s: %w", filename, err)
		}
		d.logger.WithField("folder", folder).Info("Archive folder not found. Creating...")
		if mkErr := os.MkdirAll(folder, 0o755); mkErr != nil {
			return fmt.Errorf("failed to create folder %s: %w", folder, mkErr)
		}
		err = os.Rename(source, destination)
	}
	if err != nil {
		return fmt.Errorf("failed to move %s: %w", filename, err)
	}
	return nil
}

// ReadImageDescription decodes the JSON document the capture software stores
// in the EXIF ImageDescription tag.
func ReadImageDescription(path string) (map[string]interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exif for %s: %w", path, err)
	}

	tag, err := x.Get(exif.ImageDescription)
	if err != nil {
		return nil, fmt.Errorf("no image description in %s: %w", path, err)
	}

	description, err := tag.StringVal()
	if err != nil {
		return nil, fmt.Errorf("invalid image description in %s: %w", path, err)
	}

	info := map[string]interface{}{}
	if err := json.Unmarshal([]byte(strings.TrimRight(description, "\x00")), &info); err != nil {
		return nil, fmt.Errorf("image description in %s is not JSON: %w", path, err)
	}
	return info, nil
}
