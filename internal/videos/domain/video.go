package domain

import (
	"io"
	"time"
)

// VideoStatus definition video record lifecycle status
type VideoStatus string

const (
	// VideoPending original stored, low rendition not produced yet
	VideoPending VideoStatus = "pending"
	// VideoDone low rendition produced, terminal
	VideoDone VideoStatus = "done"
	// VideoError transcode or validation failed, terminal
	VideoError VideoStatus = "error"
)

// VideoRecord is the metadata entity tracking a single video.
// LowKey is empty until the transcode succeeds; OriginalURL/LowURL are
// ephemeral and recomputed on every read, never treated as ground truth.
type VideoRecord struct {
	ID          string      `json:"id"`
	OriginalKey string      `json:"originalKey"`
	LowKey      string      `json:"lowKey,omitempty"`
	OriginalURL string      `json:"originalUrl,omitempty"`
	LowURL      string      `json:"lowUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Status      VideoStatus `json:"status"`
	Error       string      `json:"error,omitempty"`

	OriginalFilename string `json:"originalFilename"`
	Mime             string `json:"mime"`
	Size             int64  `json:"size,omitempty"`
}

// VideoPage is one page of records, most recently created first
type VideoPage struct {
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Total    int           `json:"total"`
	Items    []VideoRecord `json:"items"`
}

// UploadVideoReq usecase multipart upload request, already staged to local disk
// by the HTTP boundary
type UploadVideoReq struct {
	OriginalFilename string
	MimeType         string
	Size             int64
	LocalPath        string
}

// PresignRes usecase presign response; the client PUTs the original straight
// to the object store using UploadURL
type PresignRes struct {
	ID          string `json:"id"`
	UploadURL   string `json:"uploadUrl"`
	OriginalKey string `json:"originalKey"`
}

// DownloadRes resolves a record variant to a readable byte stream plus the
// transfer headers the boundary should set
type DownloadRes struct {
	Stream      io.ReadCloser
	ContentType string
	Size        int64
	Filename    string
}
