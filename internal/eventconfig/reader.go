// Package eventconfig reads per-event settings from the data store with a short-lived cache.
package eventconfig

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/repository"
)

// Reader provides typed access to event settings
type Reader struct {
	repo      repository.EventSettingRepository
	cache     *cache.Cache
	uncached  map[string]bool
	logger    *logrus.Logger
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewReader creates a settings reader caching values for ttl.
// Keys listed in uncachedKeys are always read from the store.
func NewReader(repo repository.EventSettingRepository, ttl time.Duration, logger *logrus.Logger, uncachedKeys ...string) *Reader {
	uncached := make(map[string]bool, len(uncachedKeys))
	for _, key := range uncachedKeys {
		uncached[key] = true
	}

	return &Reader{
		repo:     repo,
		cache:    cache.New(ttl, ttl*2),
		uncached: uncached,
		logger:   logger,
	}
}

func cacheKey(eventID, key string) string {
	return eventID + ":" + key
}

// GetString returns the raw value of a setting.
// A missing setting is reported as models.ErrNotFound.
func (r *Reader) GetString(ctx context.Context, eventID, key string) (string, error) {
	ck := cacheKey(eventID, key)
	if !r.uncached[key] {
		if value, found := r.cache.Get(ck); found {
			r.recordLookup(true)
			return value.(string), nil
		}
	}
	r.recordLookup(false)

	setting, err := r.repo.Get(ctx, eventID, key)
	if errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("event setting %s: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return "", err
	}

	if !r.uncached[key] {
		r.cache.SetDefault(ck, setting.Value)
	}
	return setting.Value, nil
}

// GetInt returns a setting parsed as an integer
func (r *Reader) GetInt(ctx context.Context, eventID, key string) (int, error) {
	value, err := r.GetString(ctx, eventID, key)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("event setting %s is not an integer: %q", key, value)
	}
	return n, nil
}

// GetFloat returns a setting parsed as a float
func (r *Reader) GetFloat(ctx context.Context, eventID, key string) (float64, error) {
	value, err := r.GetString(ctx, eventID, key)
	if err != nil {
		return 0, err
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("event setting %s is not a number: %q", key, value)
	}
	return f, nil
}

// GetBool returns a setting parsed as a boolean; "True", "true" and "1" are true.
// A missing setting reads as false.
func (r *Reader) GetBool(ctx context.Context, eventID, key string) (bool, error) {
	value, err := r.GetString(ctx, eventID, key)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.logger.WithFields(logrus.Fields{"key": key, "value": value}).Debug("Non-boolean event setting read as false")
		return false, nil
	}
	return b, nil
}

// Set stores a setting and refreshes the cached value
func (r *Reader) Set(ctx context.Context, eventID, key, value string) error {
	if err := r.repo.Set(ctx, eventID, key, value); err != nil {
		return err
	}
	if !r.uncached[key] {
		r.cache.SetDefault(cacheKey(eventID, key), value)
	}
	return nil
}

// SetBool stores a boolean setting using the "True"/"False" spelling
func (r *Reader) SetBool(ctx context.Context, eventID, key string, value bool) error {
	if value {
		return r.Set(ctx, eventID, key, "True")
	}
	return r.Set(ctx, eventID, key, "False")
}

// Clear flushes every cached setting
func (r *Reader) Clear() {
	r.cache.Flush()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.hitCount = 0
	r.missCount = 0
}

// Stats returns cache statistics
func (r *Reader) Stats() (hits, misses uint64, ratio float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hits = r.hitCount
	misses = r.missCount
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (r *Reader) recordLookup(hit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hit {
		r.hitCount++
	} else {
		r.missCount++
	}
}
