package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
)

// VideoRecorder records fetched videos in the relational store.
type VideoRecorder interface {
	UpsertVideo(ctx context.Context, v *domain.Video) (*domain.Video, error)
}

// TranscriptService fetches transcripts with a bounded timeout and records
// fetch history.
type TranscriptService struct {
	fetcher  port.TranscriptFetcher
	recorder VideoRecorder // optional
	timeout  time.Duration
}

// NewTranscriptService creates a transcript service. recorder may be nil.
func NewTranscriptService(fetcher port.TranscriptFetcher, recorder VideoRecorder, timeout time.Duration) *TranscriptService {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &TranscriptService{fetcher: fetcher, recorder: recorder, timeout: timeout}
}

// Fetch retrieves the transcript for a video URL.
func (s *TranscriptService) Fetch(ctx context.Context, url string) (*domain.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	transcript, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if s.recorder != nil {
		_, err := s.recorder.UpsertVideo(ctx, &domain.Video{
			ID:           transcript.VideoID,
			URL:          url,
			SegmentCount: len(transcript.Segments),
		})
		if err != nil {
			slog.Error("failed to record video fetch", "video_id", transcript.VideoID, "error", err)
		}
	}

	slog.Info("transcript fetched", "video_id", transcript.VideoID, "segments", len(transcript.Segments))
	return transcript, nil
}
