package correlation

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/models"
)

// TimeMatcher links photos to the race whose expected finish is closest to the capture time
type TimeMatcher struct {
	logger *logrus.Logger
}

// NewTimeMatcher creates a new time matcher
func NewTimeMatcher(logger *logrus.Logger) *TimeMatcher {
	return &TimeMatcher{logger: logger}
}

// MatchByTime picks the race minimizing |capture - start - duration|, first race on ties.
// The best fit is accepted however far off it is.
func (m *TimeMatcher) MatchByTime(settings *Settings, photo *models.Photo, races []*models.Race, confidence int) Outcome {
	var best *models.Race
	bestDiff := math.MaxInt

	for _, race := range races {
		diff := abs(settings.Normalizer.SecondsDiff(photo.CreationTime, race.StartTime) - settings.RaceDuration)
		if diff < bestDiff {
			bestDiff = diff
			best = race
		}
	}

	if best == nil {
		return OutcomeNoContent
	}

	photo.SetRace(best.ID, best.RaceClass)
	photo.Confidence = confidence
	m.logger.WithFields(logrus.Fields{
		"race_id":      best.ID,
		"race":         best.Name(),
		"seconds_diff": bestDiff,
	}).Info("Diff - best match race")
	return OutcomeMatched
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
