package stats

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// PostSample is the per-post data the aggregator needs
type PostSample struct {
	Likes         int       `json:"likes" yaml:"likes"`
	Comments      int       `json:"comments" yaml:"comments"`
	PublishedAt   time.Time `json:"published_at" yaml:"published_at"`
	Hashtags      []string  `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
	CaptionLength int       `json:"caption_length" yaml:"caption_length"`
	IsVideo       bool      `json:"is_video" yaml:"is_video"`
}

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{M}\p{N}_]+)`)

// ExtractHashtags returns the lower-cased hashtags of a caption in order of
// appearance, duplicates included. A '#' directly preceded by '&' is an HTML
// entity and is skipped.
func ExtractHashtags(caption string) []string {
	if caption == "" {
		return nil
	}

	matches := hashtagPattern.FindAllStringSubmatchIndex(caption, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[0] > 0 && caption[m[0]-1] == '&' {
			continue
		}
		tags = append(tags, strings.ToLower(caption[m[2]:m[3]]))
	}
	return tags
}

// CaptionLength counts characters, not bytes
func CaptionLength(caption string) int {
	return utf8.RuneCountInString(caption)
}

// NewPostSample builds a sample from raw post fields
func NewPostSample(likes, comments int, publishedAt time.Time, caption string, isVideo bool) PostSample {
	return PostSample{
		Likes:         likes,
		Comments:      comments,
		PublishedAt:   publishedAt,
		Hashtags:      ExtractHashtags(caption),
		CaptionLength: CaptionLength(caption),
		IsVideo:       isVideo,
	}
}
