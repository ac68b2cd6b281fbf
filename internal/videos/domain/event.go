package domain

import "time"

const (
	// EventVideoCreated a record entered the pipeline
	EventVideoCreated = "video.created"
	// EventVideoTranscoded the low rendition is ready
	EventVideoTranscoded = "video.transcoded"
	// EventVideoFailed transcode or validation failed
	EventVideoFailed = "video.failed"
)

// VideoEvent is the lifecycle notification published to the event topic,
// keyed by video id. Best effort only; the pipeline never blocks on it.
type VideoEvent struct {
	Event   string      `json:"event"`
	VideoID string      `json:"video_id"`
	Status  VideoStatus `json:"status"`
	Error   string      `json:"error,omitempty"`
	At      time.Time   `json:"at"`
}
