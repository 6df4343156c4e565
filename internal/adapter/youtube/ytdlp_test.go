package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON3(t *testing.T) {
	data := []byte(`{
		"events": [
			{"tStartMs": 0, "segs": [{"utf8": "the capital "}, {"utf8": "of France"}]},
			{"tStartMs": 4000},
			{"tStartMs": 61500, "segs": [{"utf8": "\n"}]},
			{"tStartMs": 125000, "segs": [{"utf8": "is Paris"}]}
		]
	}`)

	segments, err := parseJSON3(data, "vid123")
	require.NoError(t, err)
	require.Len(t, segments, 2) // events without text are skipped

	assert.Equal(t, "the capital of France", segments[0].Text)
	assert.Equal(t, "00:00", segments[0].StartTime)

	assert.Equal(t, "is Paris", segments[1].Text)
	assert.Equal(t, "02:05", segments[1].StartTime)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid123&t=125s", segments[1].Link)
}

func TestParseJSON3Invalid(t *testing.T) {
	_, err := parseJSON3([]byte("{not json"), "vid")
	assert.Error(t, err)
}
