package domain

const (
	// QueueName definition transcode queue name
	QueueName = "transcode"
)

// TranscodeJob is the queue message handed to the transcode worker. It carries
// both object keys so the worker never re-derives naming logic. Immutable once
// enqueued.
type TranscodeJob struct {
	ID          string `json:"id"`
	OriginalKey string `json:"original_key"`
	LowKey      string `json:"low_key"`
	Ext         string `json:"ext"`
}
