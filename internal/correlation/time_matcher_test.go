package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/race-photo-sync/internal/models"
)

func TestMatchByTimeNoRaces(t *testing.T) {
	matcher := NewTimeMatcher(newTestLogger())
	photo := newTestPhoto("2024-01-01T10:00:05")

	outcome := matcher.MatchByTime(newTestSettings(), photo, nil, models.ConfidenceTime)

	assert.Equal(t, OutcomeNoContent, outcome)
	assert.Empty(t, photo.RaceID)
	assert.Empty(t, photo.RaceClass)
	assert.Equal(t, models.ConfidenceNone, photo.Confidence)
}

func TestMatchByTimeClosestExpectedFinish(t *testing.T) {
	matcher := NewTimeMatcher(newTestLogger())
	races := []*models.Race{
		{ID: "R1", RaceClass: "G16", StartTime: "2024-01-01T10:00:00"},
		{ID: "R2", RaceClass: "J16", StartTime: "2024-01-01T10:05:00"},
		{ID: "R3", RaceClass: "G18", StartTime: "2024-01-01T10:10:00"},
	}
	// expected finish of R2 is 10:05:30
	photo := newTestPhoto("2024-01-01T10:05:33")

	outcome := matcher.MatchByTime(newTestSettings(), photo, races, models.ConfidenceTime)

	assert.Equal(t, OutcomeMatched, outcome)
	assert.Equal(t, "R2", photo.RaceID)
	assert.Equal(t, "J16", photo.RaceClass)
	assert.Equal(t, models.ConfidenceTime, photo.Confidence)
}

func TestMatchByTimeFirstRaceWinsTies(t *testing.T) {
	matcher := NewTimeMatcher(newTestLogger())
	races := []*models.Race{
		{ID: "R1", StartTime: "2024-01-01T10:00:00"},
		{ID: "R2", StartTime: "2024-01-01T10:00:20"},
	}
	// 10:00:40 is 10s after R1's expected finish and 10s before R2's
	photo := newTestPhoto("2024-01-01T10:00:40")

	matcher.MatchByTime(newTestSettings(), photo, races, models.ConfidenceTime)

	assert.Equal(t, "R1", photo.RaceID)
}

func TestMatchByTimeAcceptsDistantBestFit(t *testing.T) {
	matcher := NewTimeMatcher(newTestLogger())
	races := []*models.Race{{ID: "R1", StartTime: "2024-01-01T10:00:00"}}

	for _, capture := range []string{"2024-06-01T10:00:00", "", "unknown"} {
		photo := newTestPhoto(capture)
		outcome := matcher.MatchByTime(newTestSettings(), photo, races, models.ConfidenceTime)

		assert.Equal(t, OutcomeMatched, outcome, capture)
		assert.Equal(t, "R1", photo.RaceID)
		assert.Equal(t, models.ConfidenceTime, photo.Confidence)
	}
}
