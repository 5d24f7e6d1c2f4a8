package declutter

import "errors"

var (
	// ErrEmptyThought is returned for blank submissions; nothing is called
	// and nothing changes.
	ErrEmptyThought = errors.New("thought dump is empty")
	// ErrSubmissionInFlight is returned while another dump for the same
	// session or user is still being classified.
	ErrSubmissionInFlight = errors.New("a thought dump is already being processed")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrInvalidMood        = errors.New("mood must be between 0 and 4")
	// ErrSyncFailed wraps persistence failures after a local change. The
	// in-memory state is kept.
	ErrSyncFailed = errors.New("sync failed")
)
