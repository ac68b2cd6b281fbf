package errprocess

import (
	"errors"

	"video_transcode_service/pkg/logger"
)

// Kind classifies a pipeline failure so callers can map it to a response.
type Kind int

const (
	// Unknown unclassified failure
	Unknown Kind = iota
	// NotFound unknown record id or missing object/variant
	NotFound
	// InvalidArgument malformed request from the client
	InvalidArgument
	// InvalidInput stored object failed structural validation
	InvalidInput
	// EncoderFailure external encoder process failed
	EncoderFailure
	// UpstreamFailure object store or broker operation failed
	UpstreamFailure
)

// Error carries a failure kind together with a human readable cause.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Set logs errMsg and returns it as an Unknown error
func Set(errMsg string) error {
	logError(errMsg)
	return &Error{Kind: Unknown, Msg: errMsg}
}

// SetKind logs errMsg and returns it tagged with the given kind
func SetKind(kind Kind, errMsg string) error {
	logError(errMsg)
	return &Error{Kind: kind, Msg: errMsg}
}

// KindOf extracts the kind of err, Unknown when err carries none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func logError(errMsg string) {
	if logger.Log != nil {
		logger.Log.Error(errMsg)
	}
}
