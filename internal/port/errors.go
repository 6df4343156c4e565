package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrInvalidURL      = errors.New("could not extract video id from URL")
	ErrNoCaptions      = errors.New("no captions available for this video")
	ErrEmptyTranscript = errors.New("transcript contains no text")
	ErrEmptyQuestion   = errors.New("question must not be empty")
	ErrVideoNotFound   = errors.New("video not found")
	ErrNoData          = errors.New("no transcript data has been ingested")
)
