package correlation

import (
	"context"
	"fmt"

	"github.com/yourusername/race-photo-sync/internal/models"
)

// SettingsReader is the subset of the event configuration used for matching
type SettingsReader interface {
	GetString(ctx context.Context, eventID, key string) (string, error)
	GetInt(ctx context.Context, eventID, key string) (int, error)
}

// Settings holds the per-event matching parameters
type Settings struct {
	RaceDuration int
	MaxDeviation int
	Normalizer   *TimeNormalizer
}

// LoadSettings reads the matching parameters for an event
func LoadSettings(ctx context.Context, reader SettingsReader, eventID string) (*Settings, error) {
	duration, err := reader.GetInt(ctx, eventID, models.SettingRaceDurationEstimate)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", models.SettingRaceDurationEstimate, err)
	}

	deviation, err := reader.GetInt(ctx, eventID, models.SettingRaceTimeDeviation)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", models.SettingRaceTimeDeviation, err)
	}

	patterns, err := reader.GetString(ctx, eventID, models.SettingDatePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", models.SettingDatePatterns, err)
	}

	return &Settings{
		RaceDuration: duration,
		MaxDeviation: deviation,
		Normalizer:   NewTimeNormalizer(ParsePatterns(patterns)),
	}, nil
}
