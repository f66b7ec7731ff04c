package report

import "igreport/pkg/stats"

// MediaMix is the image/video split as a pie renderer wants it
type MediaMix struct {
	Images int `json:"images" yaml:"images"`
	Videos int `json:"videos" yaml:"videos"`
}

// ChartSeries holds the data behind the growth and content-mix charts
type ChartSeries struct {
	Username string `json:"username" yaml:"username"`
	// LikesChronological is oldest first
	LikesChronological []int    `json:"likes_chronological" yaml:"likes_chronological"`
	MediaMix           MediaMix `json:"media_mix" yaml:"media_mix"`
}

// NewChartSeries converts stats into chart inputs. Each pie slice is at
// least 1 so an empty category still renders.
func NewChartSeries(p *stats.ProfileStats) ChartSeries {
	if p == nil {
		return ChartSeries{}
	}

	likes := make([]int, len(p.LikesHistory))
	for i, v := range p.LikesHistory {
		likes[len(likes)-1-i] = v
	}

	return ChartSeries{
		Username:           p.Username,
		LikesChronological: likes,
		MediaMix: MediaMix{
			Images: max(1, p.ImageCount),
			Videos: max(1, p.VideoCount),
		},
	}
}
