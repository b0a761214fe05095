package correlation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/race-photo-sync/internal/models"
	"github.com/yourusername/race-photo-sync/internal/repository"
)

// MaxBibCandidates is the number of most frequent crop numbers tried per photo
const MaxBibCandidates = 3

// BibCandidate is a detected number with its detection count
type BibCandidate struct {
	Bib       int
	Frequency int
}

// RankBibs orders detected numbers by frequency, most common first, ties
// broken by first detection. At most limit candidates are returned.
func RankBibs(numbers []int, limit int) []BibCandidate {
	counts := make(map[int]int, len(numbers))
	var order []int
	for _, n := range numbers {
		if _, seen := counts[n]; !seen {
			order = append(order, n)
		}
		counts[n]++
	}

	candidates := make([]BibCandidate, 0, len(order))
	for _, n := range order {
		candidates = append(candidates, BibCandidate{Bib: n, Frequency: counts[n]})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Frequency > candidates[j].Frequency
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// BibMatcher links photos to races through the start list
type BibMatcher struct {
	starts      repository.StartEntryRepository
	races       repository.RaceRepository
	contestants repository.ContestantRepository
	logger      *logrus.Logger
}

// NewBibMatcher creates a new bib matcher
func NewBibMatcher(
	starts repository.StartEntryRepository,
	races repository.RaceRepository,
	contestants repository.ContestantRepository,
	logger *logrus.Logger,
) *BibMatcher {
	return &BibMatcher{
		starts:      starts,
		races:       races,
		contestants: contestants,
		logger:      logger,
	}
}

// MatchByBib looks up the start entries of bib and links the photo to the
// first race whose time window contains the capture time. Contestant details
// are merged afterwards; if they are missing the outcome is partial but the
// race link stays.
func (m *BibMatcher) MatchByBib(
	ctx context.Context,
	settings *Settings,
	photo *models.Photo,
	bib int,
	raceclasses []*models.RaceClass,
	confidence int,
) (Outcome, error) {
	entries, err := m.starts.GetByBib(ctx, photo.EventID, bib)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return OutcomeNoContent, fmt.Errorf("failed to get start entries for bib %d: %w", bib, err)
	}

	for _, entry := range entries {
		race, err := m.verifyHeatTime(ctx, settings, photo, entry.RaceID)
		if err != nil {
			return OutcomeNoContent, err
		}
		if race == nil {
			continue
		}

		photo.SetRace(race.ID, race.RaceClass)
		photo.AddBib(bib)
		photo.Confidence = confidence

		contestant, err := m.contestants.GetByBib(ctx, photo.EventID, bib)
		if err != nil || contestant == nil {
			m.logger.WithFields(logrus.Fields{
				"bib":     bib,
				"race_id": race.ID,
			}).WithError(err).Debug("Missing attribute - contestant not found")
			return OutcomePartial, nil
		}

		photo.AddClub(contestant.Club)
		if raceclass := FindRaceClass(contestant.AgeClass, raceclasses); raceclass != "" {
			photo.RaceClass = raceclass
		}
		return OutcomeMatched, nil
	}

	return OutcomeNoContent, nil
}

// verifyHeatTime returns the race if the photo was captured inside its window, nil otherwise
func (m *BibMatcher) verifyHeatTime(ctx context.Context, settings *Settings, photo *models.Photo, raceID string) (*models.Race, error) {
	if photo.CreationTime == "" {
		return nil, nil
	}

	race, err := m.races.GetByID(ctx, photo.EventID, raceID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race %s: %w", raceID, err)
	}

	seconds := settings.Normalizer.SecondsDiff(photo.CreationTime, race.StartTime)
	if !VerifyHeat(seconds, settings.RaceDuration, settings.MaxDeviation) {
		return nil, nil
	}

	m.logger.WithFields(logrus.Fields{
		"seconds": seconds,
		"race":    race.DisplayName(),
	}).Info("Diff - confirmed bib")
	return race, nil
}
