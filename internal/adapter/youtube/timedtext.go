package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
	"github.com/omarazaz1/video-chat-project/pkg/retry"
)

// TimedTextFetcher retrieves captions by scraping the watch page for
// ytInitialPlayerResponse and downloading the caption track timedtext XML.
// Works without an API key from most IP addresses.
type TimedTextFetcher struct {
	httpClient *http.Client
	langs      []string
}

// NewTimedTextFetcher creates a fetcher preferring the given caption languages.
func NewTimedTextFetcher(client *http.Client, langs []string) *TimedTextFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &TimedTextFetcher{httpClient: client, langs: langs}
}

const (
	watchPageUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// playerResponseMarker marks the start of the player response JSON in watch page HTML.
	playerResponseMarker = "ytInitialPlayerResponse = "
)

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Text  string  `xml:",chardata"`
}

// Fetch implements port.TranscriptFetcher.
func (f *TimedTextFetcher) Fetch(ctx context.Context, rawURL string) (*domain.Transcript, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	track, err := f.findCaptionTrack(ctx, videoID)
	if err != nil {
		return nil, err
	}

	segments, err := f.fetchTimedText(ctx, videoID, track.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty caption track", port.ErrNoCaptions)
	}

	return &domain.Transcript{
		VideoID:  videoID,
		Language: track.LanguageCode,
		Segments: segments,
	}, nil
}

// findCaptionTrack scrapes the watch page and picks the best usable caption track.
func (f *TimedTextFetcher) findCaptionTrack(ctx context.Context, videoID string) (captionTrack, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID

	resp, err := retry.HTTP(ctx, retry.DefaultConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", watchPageUA)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return f.httpClient.Do(req)
	})
	if err != nil {
		return captionTrack{}, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return captionTrack{}, fmt.Errorf("read watch page: %w", err)
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return captionTrack{}, fmt.Errorf("%w: ytInitialPlayerResponse not found", port.ErrNoCaptions)
	}
	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return captionTrack{}, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return captionTrack{}, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return captionTrack{}, fmt.Errorf("%w: %s", port.ErrNoCaptions, player.PlayabilityStatus.Reason)
		}
		return captionTrack{}, port.ErrNoCaptions
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, fmt.Errorf("%w: no caption tracks", port.ErrNoCaptions)
	}
	track, ok := pickBestTrack(tracks, f.langs)
	if !ok {
		return captionTrack{}, fmt.Errorf("%w: all caption tracks require a browser session", port.ErrNoCaptions)
	}
	return track, nil
}

// fetchTimedText downloads and parses a timedtext XML caption URL into segments.
func (f *TimedTextFetcher) fetchTimedText(ctx context.Context, videoID, baseURL string) ([]domain.TranscriptSegment, error) {
	resp, err := retry.HTTP(ctx, retry.DefaultConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", watchPageUA)
		return f.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}

	return parseTimedText(body, videoID)
}

// parseTimedText converts timedtext XML into timestamped segments.
func parseTimedText(data []byte, videoID string) ([]domain.TranscriptSegment, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := cleanCaptionText(line.Text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.TranscriptSegment{
			Text:         text,
			StartTime:    FormatTimestamp(line.Start),
			StartSeconds: line.Start,
			Link:         WatchLink(videoID, line.Start),
		})
	}
	return segments, nil
}

// cleanCaptionText unescapes HTML entities and collapses whitespace in a caption cue.
func cleanCaptionText(s string) string {
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Manual tracks win over auto-generated ones; tracks needing a PoToken are skipped.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return tracks[0], false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
