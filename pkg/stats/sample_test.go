package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		caption  string
		expected []string
	}{
		{name: "empty", caption: "", expected: nil},
		{name: "no tags", caption: "sunset at the beach", expected: nil},
		{name: "simple", caption: "Sunset #Travel #food", expected: []string{"travel", "food"}},
		{name: "duplicates kept", caption: "#go #go #rust", expected: []string{"go", "go", "rust"}},
		{name: "underscore and digits", caption: "#summer_2026!", expected: []string{"summer_2026"}},
		{name: "unicode", caption: "#café #東京", expected: []string{"café", "東京"}},
		{name: "html entity", caption: "rock &#39;n roll #music", expected: []string{"music"}},
		{name: "bare hash", caption: "# nothing", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractHashtags(tt.caption))
		})
	}
}

func TestNewPostSample(t *testing.T) {
	published := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewPostSample(12, 3, published, "Hi #There", true)

	assert.Equal(t, 12, s.Likes)
	assert.Equal(t, 3, s.Comments)
	assert.Equal(t, published, s.PublishedAt)
	assert.Equal(t, []string{"there"}, s.Hashtags)
	assert.Equal(t, 9, s.CaptionLength)
	assert.True(t, s.IsVideo)
}
