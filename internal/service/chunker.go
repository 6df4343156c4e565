package service

import (
	"strings"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
)

// contextChunkText is the static descriptive chunk injected at ingest so
// whole-video questions ("what is this video about?") have something to match.
const contextChunkText = "This is a transcript of a YouTube video. " +
	"The following chunks contain the spoken words of the video in order, " +
	"each tagged with the timestamp where it starts."

// word is a token of transcript text annotated with its source segment.
type word struct {
	text string
	seg  int
}

// BuildChunks turns ordered transcript segments into the chunk set to embed:
// a static context chunk, fixed-size transcript chunks with overlap, and one
// full-transcript chunk. Fails when no segment carries non-empty text.
func BuildChunks(videoID string, segments []domain.TranscriptSegment, size, overlap int) ([]domain.Chunk, error) {
	words := collectWords(segments)
	if len(words) == 0 {
		return nil, port.ErrEmptyTranscript
	}
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	chunks := []domain.Chunk{{
		VideoID: videoID,
		Kind:    domain.ChunkKindContext,
		Text:    contextChunkText,
	}}

	for _, span := range splitWords(words, size, overlap) {
		first := segments[span.words[0].seg]
		chunks = append(chunks, domain.Chunk{
			VideoID:      videoID,
			Kind:         domain.ChunkKindTranscript,
			Text:         joinWords(span.words),
			StartTime:    first.StartTime,
			StartSeconds: first.StartSeconds,
			Link:         first.Link,
		})
	}

	chunks = append(chunks, domain.Chunk{
		VideoID: videoID,
		Kind:    domain.ChunkKindFull,
		Text:    joinWords(words),
	})

	for i := range chunks {
		chunks[i].ChunkIndex = i
	}
	return chunks, nil
}

type wordSpan struct {
	words []word
}

// collectWords flattens segments into words tagged with their segment index.
func collectWords(segments []domain.TranscriptSegment) []word {
	var words []word
	for i, seg := range segments {
		for _, w := range strings.Fields(seg.Text) {
			words = append(words, word{text: w, seg: i})
		}
	}
	return words
}

// splitWords groups words into spans of at most size characters, carrying
// up to overlap characters of trailing words into the next span. Every span
// begins with at least one word the previous span did not end with, so the
// split always terminates.
func splitWords(words []word, size, overlap int) []wordSpan {
	var spans []wordSpan
	i := 0
	for i < len(words) {
		length := 0
		j := i
		for j < len(words) {
			wordLen := len(words[j].text)
			if j > i {
				wordLen++ // joining space
			}
			if length+wordLen > size && j > i {
				break
			}
			length += wordLen
			j++
		}
		spans = append(spans, wordSpan{words: words[i:j]})
		if j >= len(words) {
			break
		}

		// Back up overlap characters worth of words, but always advance.
		back := j
		backLen := 0
		for back > i+1 && backLen+len(words[back-1].text) <= overlap {
			backLen += len(words[back-1].text) + 1
			back--
		}
		i = back
	}
	return spans
}

func joinWords(words []word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}
