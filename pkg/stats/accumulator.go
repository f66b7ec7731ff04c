package stats

import (
	"sort"
	"time"
)

// Accumulator folds post samples into running totals.
// Samples are not retained; only the likes series survives.
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	loc *time.Location
	now func() time.Time

	count         int
	likesSum      int
	commentsSum   int
	likesHistory  []int
	videoCount    int
	imageCount    int
	captionSum    int
	captionCount  int
	hashtagCounts map[string]int
	hashtagOrder  []string
	weekdays      map[string]int
}

// AccumulatorOption configures an Accumulator
type AccumulatorOption func(*Accumulator)

// WithLocation sets the timezone used for weekday bucketing
func WithLocation(loc *time.Location) AccumulatorOption {
	return func(a *Accumulator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithClock sets the clock used to stamp ScannedAt
func WithClock(now func() time.Time) AccumulatorOption {
	return func(a *Accumulator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAccumulator creates an empty accumulator
func NewAccumulator(opts ...AccumulatorOption) *Accumulator {
	a := &Accumulator{
		loc:           time.Local,
		now:           time.Now,
		hashtagCounts: make(map[string]int),
		weekdays:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add folds one sample
func (a *Accumulator) Add(s PostSample) {
	a.count++
	a.likesSum += s.Likes
	a.commentsSum += s.Comments
	a.likesHistory = append(a.likesHistory, s.Likes)

	if s.IsVideo {
		a.videoCount++
	} else {
		a.imageCount++
	}

	if s.CaptionLength > 0 {
		a.captionSum += s.CaptionLength
		a.captionCount++
	}

	for _, tag := range s.Hashtags {
		if _, seen := a.hashtagCounts[tag]; !seen {
			a.hashtagOrder = append(a.hashtagOrder, tag)
		}
		a.hashtagCounts[tag]++
	}

	day := s.PublishedAt.In(a.loc).Weekday().String()
	a.weekdays[day]++
}

// Count returns how many samples have been folded
func (a *Accumulator) Count() int {
	return a.count
}

// Finalize derives the profile statistics. It returns nil when no sample was added.
func (a *Accumulator) Finalize(username string, followers int) *ProfileStats {
	if a.count == 0 {
		return nil
	}

	avgLikes := a.likesSum / a.count
	avgComments := a.commentsSum / a.count

	rate, ok := EngagementRate(avgLikes, avgComments, followers)

	avgCaption := 0
	if a.captionCount > 0 {
		avgCaption = a.captionSum / a.captionCount
	}

	history := make([]int, len(a.likesHistory))
	copy(history, a.likesHistory)

	weekdays := make(map[string]int, len(a.weekdays))
	for k, v := range a.weekdays {
		weekdays[k] = v
	}

	return &ProfileStats{
		Username:              username,
		Followers:             followers,
		EngagementRatePct:     rate,
		EngagementUndefined:   !ok,
		AvgLikes:              avgLikes,
		AvgComments:           avgComments,
		LikesHistory:          history,
		VideoCount:            a.videoCount,
		ImageCount:            a.imageCount,
		TopHashtags:           a.topHashtags(TopHashtagLimit),
		WeekdayHistogram:      weekdays,
		AvgCaptionLength:      avgCaption,
		EstimatedValuePerPost: EstimatedValue(avgLikes),
		SampleSize:            a.count,
		ScannedAt:             a.now().UTC(),
	}
}

// topHashtags orders by count descending, first-seen first on ties
func (a *Accumulator) topHashtags(limit int) []HashtagCount {
	ranked := make([]HashtagCount, 0, len(a.hashtagOrder))
	for _, tag := range a.hashtagOrder {
		ranked = append(ranked, HashtagCount{Tag: tag, Count: a.hashtagCounts[tag]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Aggregate folds samples in order and finalizes them
func Aggregate(username string, followers int, samples []PostSample, opts ...AccumulatorOption) *ProfileStats {
	acc := NewAccumulator(opts...)
	for _, s := range samples {
		acc.Add(s)
	}
	return acc.Finalize(username, followers)
}
