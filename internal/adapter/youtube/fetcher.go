package youtube

import (
	"context"
	"log/slog"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
)

// Fetcher tries each configured fetcher in order, falling back on failure.
// Invalid URLs fail immediately since every fetcher would reject them.
type Fetcher struct {
	fetchers []port.TranscriptFetcher
}

// NewFetcher chains fetchers in preference order.
func NewFetcher(fetchers ...port.TranscriptFetcher) *Fetcher {
	return &Fetcher{fetchers: fetchers}
}

// Fetch implements port.TranscriptFetcher.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.Transcript, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	var lastErr error = port.ErrNoCaptions
	for i, fetcher := range f.fetchers {
		transcript, err := fetcher.Fetch(ctx, rawURL)
		if err == nil {
			return transcript, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i < len(f.fetchers)-1 {
			slog.Warn("transcript fetch failed, trying fallback",
				slog.String("video_id", videoID), slog.Any("err", err))
		}
	}
	return nil, lastErr
}
