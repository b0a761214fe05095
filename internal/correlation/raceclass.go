package correlation

import "github.com/yourusername/race-photo-sync/internal/models"

// FindRaceClass returns the name of the first race class containing ageClass, or ""
func FindRaceClass(ageClass string, raceclasses []*models.RaceClass) string {
	for _, rc := range raceclasses {
		if rc.Includes(ageClass) {
			return rc.Name
		}
	}
	return ""
}
