package correlation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/repository"
)

// Engine correlates photo drafts with races, trying bib numbers first and
// falling back to capture time only when no bib verifies.
type Engine struct {
	bibs   *BibMatcher
	times  *TimeMatcher
	races  repository.RaceRepository
	logger *logrus.Logger
}

// NewEngine creates a new correlation engine
func NewEngine(
	starts repository.StartEntryRepository,
	races repository.RaceRepository,
	contestants repository.ContestantRepository,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		bibs:   NewBibMatcher(starts, races, contestants, logger),
		times:  NewTimeMatcher(logger),
		races:  races,
		logger: logger,
	}
}

// Correlate links photo to a race. The first verified crop bib wins; time
// matching runs only when none of the top candidates verified.
func (e *Engine) Correlate(ctx context.Context, settings *Settings, photo *models.Photo, raceclasses []*models.RaceClass) (Outcome, error) {
	outcome := OutcomeNoContent

	var cropNumbers []int
	if photo.AIInformation != nil {
		cropNumbers = photo.AIInformation.AICropNumbers
	}

	for _, candidate := range RankBibs(cropNumbers, MaxBibCandidates) {
		var err error
		outcome, err = e.bibs.MatchByBib(ctx, settings, photo, candidate.Bib, raceclasses, models.ConfidenceBib)
		if err != nil {
			return OutcomeNoContent, err
		}
		if outcome.Linked() {
			break
		}
	}

	if outcome == OutcomeNoContent {
		races, err := e.races.GetAllByEvent(ctx, photo.EventID)
		if err != nil {
			return OutcomeNoContent, fmt.Errorf("failed to get races: %w", err)
		}
		outcome = e.times.MatchByTime(settings, photo, races, models.ConfidenceTime)
	}

	e.logger.WithFields(logrus.Fields{
		"photo":      photo.Name,
		"outcome":    outcome.String(),
		"race_id":    photo.RaceID,
		"confidence": photo.Confidence,
	}).Debug("Correlated photo")

	return outcome, nil
}

// ClassifyCrossingPoint maps a crossing point to the photo finish and start registration flags
func ClassifyCrossingPoint(point string) (isPhotoFinish, isStartRegistration bool) {
	switch point {
	case models.CrossingPointFinish, models.CrossingPointMaal:
		return true, false
	case models.CrossingPointStart:
		return false, true
	default:
		return false, false
	}
}
