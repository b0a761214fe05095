package models

import "fmt"

// Crossing points reported by the capture pipeline
const (
	CrossingPointStart  = "Start"
	CrossingPointFinish = "Finish"
	CrossingPointMaal   = "Mål"
)

// Metadata keys written by the capture pipeline on detection blobs
const (
	MetadataCaptureTime   = "passeringstid"
	MetadataCrossingPoint = "passeringspunkt"
)

// Detection is a raw capture from the pipeline, not yet reconciled into a Photo
type Detection struct {
	MainURL          string
	CropURL          string
	EventID          string
	CaptureTimestamp string
	CrossingPoint    string
	Metadata         map[string]string
	AIInformation    *AIInformation
	// AckID is set for detections received from the message queue
	AckID string
}

// NewDetection builds a detection from blob urls and pipeline metadata.
// Capture time and crossing point are taken from the metadata keys.
func NewDetection(eventID, mainURL, cropURL string, metadata map[string]string) *Detection {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Detection{
		MainURL:          mainURL,
		CropURL:          cropURL,
		EventID:          eventID,
		CaptureTimestamp: metadata[MetadataCaptureTime],
		CrossingPoint:    metadata[MetadataCrossingPoint],
		Metadata:         metadata,
	}
}

// PhotoMessage is the queue payload published for every uploaded photo pair
type PhotoMessage struct {
	AIInformation *AIInformation         `json:"ai_information"`
	CropURL       string                 `json:"crop_url"`
	EventID       string                 `json:"event_id"`
	PhotoInfo     map[string]interface{} `json:"photo_info"`
	PhotoURL      string                 `json:"photo_url"`

	// AckID identifies a pulled message until it is acknowledged
	AckID string `json:"-"`
}

// ToDetection converts the message into a detection, flattening photo info to strings
func (m *PhotoMessage) ToDetection() *Detection {
	metadata := make(map[string]string, len(m.PhotoInfo))
	for k, v := range m.PhotoInfo {
		if s, ok := v.(string); ok {
			metadata[k] = s
			continue
		}
		metadata[k] = fmt.Sprint(v)
	}
	d := NewDetection(m.EventID, m.PhotoURL, m.CropURL, metadata)
	d.AIInformation = m.AIInformation
	d.AckID = m.AckID
	return d
}
