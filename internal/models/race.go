package models

import (
	"strconv"
	"time"
)

// Race represents a single heat in the event race plan
type Race struct {
	ID        string    `db:"id" json:"id" validate:"required"`
	EventID   string    `db:"event_id" json:"event_id" validate:"required"`
	RaceClass string    `db:"raceclass" json:"raceclass"`
	Round     string    `db:"round" json:"round"`
	Index     string    `db:"race_index" json:"index"`
	Heat      int       `db:"heat" json:"heat"`
	StartTime string    `db:"start_time" json:"start_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Name returns the heat name composed of round, index and heat number
func (r *Race) Name() string {
	return r.Round + r.Index + strconv.Itoa(r.Heat)
}

// DisplayName prefixes the heat name with the race class, e.g. "J15-Q1"
func (r *Race) DisplayName() string {
	return r.RaceClass + "-" + r.Name()
}

// StartEntry links a bib to the race it starts in
type StartEntry struct {
	ID      string `db:"id" json:"id"`
	EventID string `db:"event_id" json:"event_id"`
	RaceID  string `db:"race_id" json:"race_id" validate:"required"`
	Bib     int    `db:"bib" json:"bib" validate:"required,gt=0"`
}

// Contestant is a registered participant identified by bib
type Contestant struct {
	ID       string `db:"id" json:"id"`
	EventID  string `db:"event_id" json:"event_id"`
	Bib      int    `db:"bib" json:"bib"`
	Name     string `db:"name" json:"name"`
	Club     string `db:"club" json:"club"`
	AgeClass string `db:"ageclass" json:"ageclass"`
}

// RaceClass groups one or more age classes into a single competition class
type RaceClass struct {
	ID         string   `db:"id" json:"id"`
	EventID    string   `db:"event_id" json:"event_id"`
	Name       string   `db:"name" json:"name"`
	AgeClasses []string `db:"ageclasses" json:"ageclasses"`
}

// Includes reports whether ageClass belongs to this race class
func (rc *RaceClass) Includes(ageClass string) bool {
	for _, a := range rc.AgeClasses {
		if a == ageClass {
			return true
		}
	}
	return false
}

// Event is the sporting event photos are synchronized for
type Event struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Date string `db:"date" json:"date_of_event"`
}
