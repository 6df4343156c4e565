package port

import (
	"context"

	"github.com/omarazaz1/video-chat-project/internal/domain"
)

// TranscriptFetcher retrieves the caption track of a video as timed segments.
type TranscriptFetcher interface {
	// Fetch returns the transcript for a video URL. Failures are reported as
	// errors wrapping the sentinel values in errors.go so callers can branch
	// on kind (invalid URL vs. no captions vs. upstream failure).
	Fetch(ctx context.Context, url string) (*domain.Transcript, error)
}
