package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
)

// YtDlpFetcher downloads auto-generated captions with the yt-dlp binary and
// parses the resulting json3 file. The caption file is removed after parsing.
type YtDlpFetcher struct {
	binPath string
	workDir string
	langs   []string
}

// NewYtDlpFetcher creates a subprocess-based fetcher. binPath is the yt-dlp
// executable; workDir is where caption files are written and cleaned up.
func NewYtDlpFetcher(binPath, workDir string, langs []string) *YtDlpFetcher {
	return &YtDlpFetcher{binPath: binPath, workDir: workDir, langs: langs}
}

// json3Doc mirrors the json3 caption format produced by yt-dlp.
type json3Doc struct {
	Events []json3Event `json:"events"`
}

type json3Event struct {
	StartMs int64 `json:"tStartMs"`
	Segs    []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
}

// Fetch implements port.TranscriptFetcher.
func (f *YtDlpFetcher) Fetch(ctx context.Context, rawURL string) (*domain.Transcript, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	args := []string{
		"--write-auto-sub",
		"--write-sub",
		"--sub-format", "json3",
		"--skip-download",
		"-o", filepath.Join(f.workDir, "%(id)s.%(ext)s"),
	}
	if len(f.langs) > 0 {
		args = append(args, "--sub-langs", strings.Join(f.langs, ","))
	}
	args = append(args, "https://www.youtube.com/watch?v="+videoID)

	cmd := exec.CommandContext(ctx, f.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	captionFile, err := f.findCaptionFile(videoID)
	if err != nil {
		return nil, err
	}
	defer os.Remove(captionFile)

	data, err := os.ReadFile(captionFile)
	if err != nil {
		return nil, fmt.Errorf("read caption file: %w", err)
	}

	segments, err := parseJSON3(data, videoID)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: caption file had no text events", port.ErrNoCaptions)
	}

	return &domain.Transcript{VideoID: videoID, Segments: segments}, nil
}

// findCaptionFile locates the json3 file yt-dlp wrote for the video.
func (f *YtDlpFetcher) findCaptionFile(videoID string) (string, error) {
	candidates := make([]string, 0, len(f.langs)+2)
	for _, lang := range f.langs {
		candidates = append(candidates, videoID+"."+lang+".json3")
	}
	candidates = append(candidates, videoID+".en.json3", videoID+".en-US.json3")

	for _, name := range candidates {
		path := filepath.Join(f.workDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// Any json3 for this id (yt-dlp may have picked another language).
	matches, _ := filepath.Glob(filepath.Join(f.workDir, videoID+".*.json3"))
	if len(matches) > 0 {
		return matches[0], nil
	}
	return "", fmt.Errorf("%w: no caption file after yt-dlp run", port.ErrNoCaptions)
}

// parseJSON3 converts json3 caption events into timestamped segments.
func parseJSON3(data []byte, videoID string) ([]domain.TranscriptSegment, error) {
	var doc json3Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json3 captions: %w", err)
	}

	var segments []domain.TranscriptSegment
	for _, e := range doc.Events {
		if len(e.Segs) == 0 {
			continue
		}
		var sb strings.Builder
		for _, seg := range e.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.Join(strings.Fields(sb.String()), " ")
		if text == "" {
			continue
		}
		startSec := float64(e.StartMs) / 1000
		segments = append(segments, domain.TranscriptSegment{
			Text:         text,
			StartTime:    FormatTimestamp(startSec),
			StartSeconds: startSec,
			Link:         WatchLink(videoID, startSec),
		})
	}
	return segments, nil
}
