package stats

import (
	"fmt"
	"math"
	"time"

	"igreport/pkg/errors"
)

const (
	// TopHashtagLimit is how many hashtags ProfileStats keeps
	TopHashtagLimit = 10

	// ValuePerLike is the estimated sponsorship value of one average like
	ValuePerLike = 0.25
)

// HashtagCount is a hashtag and how many times it was used
type HashtagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// ProfileStats is the aggregate result of one profile scan
type ProfileStats struct {
	Username              string         `json:"username" yaml:"username"`
	Followers             int            `json:"followers" yaml:"followers"`
	EngagementRatePct     float64        `json:"engagement_rate_pct" yaml:"engagement_rate_pct"`
	EngagementUndefined   bool           `json:"engagement_undefined,omitempty" yaml:"engagement_undefined,omitempty"`
	AvgLikes              int            `json:"avg_likes" yaml:"avg_likes"`
	AvgComments           int            `json:"avg_comments" yaml:"avg_comments"`
	LikesHistory          []int          `json:"likes_history" yaml:"likes_history"`
	VideoCount            int            `json:"video_count" yaml:"video_count"`
	ImageCount            int            `json:"image_count" yaml:"image_count"`
	TopHashtags           []HashtagCount `json:"top_hashtags" yaml:"top_hashtags"`
	WeekdayHistogram      map[string]int `json:"weekday_histogram" yaml:"weekday_histogram"`
	AvgCaptionLength      int            `json:"avg_caption_length" yaml:"avg_caption_length"`
	EstimatedValuePerPost int            `json:"estimated_value_per_post" yaml:"estimated_value_per_post"`
	SampleSize            int            `json:"sample_size" yaml:"sample_size"`
	ScannedAt             time.Time      `json:"scanned_at" yaml:"scanned_at"`
}

// EngagementErr reports an undefined engagement rate as an error
func (p *ProfileStats) EngagementErr() error {
	if p == nil || !p.EngagementUndefined {
		return nil
	}
	return &errors.ScanError{
		Kind:     errors.KindUndefinedMetric,
		Username: p.Username,
		Err:      fmt.Errorf("engagement rate needs at least one follower: %w", errors.ErrUndefinedMetric),
	}
}

// Weekdays lists the histogram keys in calendar order starting Monday
var Weekdays = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

// EngagementRate returns round((avgLikes+avgComments)/followers*100, 2).
// ok is false when followers is not positive.
func EngagementRate(avgLikes, avgComments, followers int) (rate float64, ok bool) {
	if followers <= 0 {
		return 0, false
	}
	raw := float64(avgLikes+avgComments) / float64(followers) * 100
	return RoundTo(raw, 2), true
}

// EstimatedValue returns floor(avgLikes * ValuePerLike)
func EstimatedValue(avgLikes int) int {
	return int(math.Floor(float64(avgLikes) * ValuePerLike))
}

// RoundTo rounds x half away from zero to the given number of decimals
func RoundTo(x float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}
