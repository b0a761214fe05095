package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Confidence levels assigned by the correlation strategies
const (
	ConfidenceNone = 0
	ConfidenceTime = 50
	ConfidenceBib  = 100
)

// AIInformation holds the tags extracted from a photo and its crop by the vision service
type AIInformation struct {
	Persons       int      `json:"persons"`
	AINumbers     []int    `json:"ai_numbers"`
	AIText        []string `json:"ai_text"`
	AICropNumbers []int    `json:"ai_crop_numbers"`
	AICropText    []string `json:"ai_crop_text"`
}

// IsEmpty reports whether no tags were detected at all
func (a *AIInformation) IsEmpty() bool {
	return a == nil || (a.Persons == 0 && len(a.AINumbers) == 0 && len(a.AIText) == 0 &&
		len(a.AICropNumbers) == 0 && len(a.AICropText) == 0)
}

// Photo represents a persisted photo record linked to an event
type Photo struct {
	ID                  uuid.UUID         `db:"id" json:"id"`
	Name                string            `db:"name" json:"name" validate:"required"`
	EventID             string            `db:"event_id" json:"event_id" validate:"required"`
	CreationTime        string            `db:"creation_time" json:"creation_time"`
	IsPhotoFinish       bool              `db:"is_photo_finish" json:"is_photo_finish"`
	IsStartRegistration bool              `db:"is_start_registration" json:"is_start_registration"`
	AIInformation       *AIInformation    `db:"ai_information" json:"ai_information"`
	Information         map[string]string `db:"information" json:"information"`
	RaceID              string            `db:"race_id" json:"race_id"`
	RaceClass           string            `db:"raceclass" json:"raceclass"`
	BibList             []int             `db:"biblist" json:"biblist"`
	ClubList            []string          `db:"clublist" json:"clublist"`
	Confidence          int               `db:"confidence" json:"confidence" validate:"gte=0,lte=100"`
	Starred             bool              `db:"starred" json:"starred"`
	GBaseURL            string            `db:"g_base_url" json:"g_base_url" validate:"required"`
	GCropURL            string            `db:"g_crop_url" json:"g_crop_url"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}

// HasAIInformation reports whether the photo carries vision tags worth correlating
func (p *Photo) HasAIInformation() bool {
	return !p.AIInformation.IsEmpty()
}

// SetRace links the photo to a race; race id and race class are always set together
func (p *Photo) SetRace(raceID, raceClass string) {
	p.RaceID = raceID
	p.RaceClass = raceClass
}

// IsLinked reports whether the photo has been resolved to a race
func (p *Photo) IsLinked() bool {
	return p.RaceID != ""
}

// AddBib appends bib unless it is already listed
func (p *Photo) AddBib(bib int) bool {
	for _, b := range p.BibList {
		if b == bib {
			return false
		}
	}
	p.BibList = append(p.BibList, bib)
	return true
}

// HasBib reports whether bib is already listed on the photo
func (p *Photo) HasBib(bib int) bool {
	for _, b := range p.BibList {
		if b == bib {
			return true
		}
	}
	return false
}

// AddClub appends club unless it is empty or already listed
func (p *Photo) AddClub(club string) bool {
	if club == "" {
		return false
	}
	for _, c := range p.ClubList {
		if c == club {
			return false
		}
	}
	p.ClubList = append(p.ClubList, club)
	return true
}

// AIInformationJSON encodes the AI tags for a JSONB column
func (p *Photo) AIInformationJSON() ([]byte, error) {
	if p.AIInformation == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.AIInformation)
}
