package models

import "time"

// Event setting keys read by the sync service
const (
	SettingRaceDurationEstimate = "RACE_DURATION_ESTIMATE"
	SettingRaceTimeDeviation    = "RACE_TIME_DEVIATION_ALLOWED"
	SettingDatePatterns         = "DATE_PATTERNS"
	SettingConfidenceLimit      = "CONFIDENCE_LIMIT"
	SettingLatestPhoto          = "GOOGLE_LATEST_PHOTO"
	SettingServiceAvailable     = "INTEGRATION_SERVICE_AVAILABLE"
	SettingServiceRunning       = "INTEGRATION_SERVICE_RUNNING"
	SettingServiceStart         = "INTEGRATION_SERVICE_START"
	SettingServiceMode          = "INTEGRATION_SERVICE_MODE"
)

// EventSetting is a key/value configuration entry scoped to one event
type EventSetting struct {
	EventID   string    `db:"event_id" json:"event_id" validate:"required"`
	Key       string    `db:"key" json:"key" validate:"required"`
	Value     string    `db:"value" json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
