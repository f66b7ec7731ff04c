package stats

import (
	"errors"
	"testing"
	"time"

	igerrors "igreport/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func day(d int) time.Time {
	// 2026-03-02 is a Monday
	return time.Date(2026, 3, 2+d, 10, 0, 0, 0, time.UTC)
}

func TestAggregateScenario(t *testing.T) {
	samples := []PostSample{
		{Likes: 100, Comments: 10, PublishedAt: day(0)},
		{Likes: 200, Comments: 10, PublishedAt: day(1)},
		{Likes: 150, Comments: 10, PublishedAt: day(2)},
		{Likes: 50, Comments: 10, PublishedAt: day(3)},
		{Likes: 300, Comments: 10, PublishedAt: day(4), IsVideo: true},
	}

	ps := Aggregate("alice", 1000, samples, WithLocation(time.UTC), WithClock(clock))
	require.NotNil(t, ps)

	assert.Equal(t, 160, ps.AvgLikes)
	assert.Equal(t, 10, ps.AvgComments)
	assert.Equal(t, 17.0, ps.EngagementRatePct)
	assert.Equal(t, 40, ps.EstimatedValuePerPost)
	assert.Equal(t, 5, ps.SampleSize)
	assert.Equal(t, []int{100, 200, 150, 50, 300}, ps.LikesHistory)
	assert.Equal(t, 1, ps.VideoCount)
	assert.Equal(t, 4, ps.ImageCount)
	assert.False(t, ps.EngagementUndefined)
	assert.Equal(t, fixedNow, ps.ScannedAt)
	assert.Equal(t, map[string]int{
		"Monday": 1, "Tuesday": 1, "Wednesday": 1, "Thursday": 1, "Friday": 1,
	}, ps.WeekdayHistogram)
}

func TestAverageTruncation(t *testing.T) {
	tests := []struct {
		name  string
		likes []int
	}{
		{name: "exact", likes: []int{10, 20, 30}},
		{name: "truncates", likes: []int{1, 2}},
		{name: "single", likes: []int{7}},
		{name: "large remainder", likes: []int{99, 100, 100}},
		{name: "zero", likes: []int{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := make([]PostSample, len(tt.likes))
			sum := 0
			for i, l := range tt.likes {
				samples[i] = PostSample{Likes: l, Comments: l * 2, PublishedAt: day(i)}
				sum += l
			}

			ps := Aggregate("u", 100, samples, WithClock(clock))
			require.NotNil(t, ps)

			n := ps.SampleSize
			assert.LessOrEqual(t, ps.AvgLikes*n, sum)
			assert.Less(t, sum, (ps.AvgLikes+1)*n)
			assert.LessOrEqual(t, ps.AvgComments*n, sum*2)
			assert.Less(t, sum*2, (ps.AvgComments+1)*n)
		})
	}
}

func TestTopHashtagsOrdering(t *testing.T) {
	samples := []PostSample{
		NewPostSample(1, 0, day(0), "#travel #food", false),
		NewPostSample(1, 0, day(1), "#food", false),
		NewPostSample(1, 0, day(2), "#travel", false),
	}

	ps := Aggregate("u", 10, samples, WithClock(clock))
	require.NotNil(t, ps)

	assert.Equal(t, []HashtagCount{
		{Tag: "travel", Count: 2},
		{Tag: "food", Count: 2},
	}, ps.TopHashtags)
}

func TestTopHashtagsLimitAndFrequency(t *testing.T) {
	caption := "#a #b #c #d #e #f #g #h #i #j #k #l #l #k #l"
	ps := Aggregate("u", 10, []PostSample{NewPostSample(1, 1, day(0), caption, false)}, WithClock(clock))
	require.NotNil(t, ps)
	require.Len(t, ps.TopHashtags, TopHashtagLimit)

	assert.Equal(t, HashtagCount{Tag: "l", Count: 3}, ps.TopHashtags[0])
	assert.Equal(t, HashtagCount{Tag: "k", Count: 2}, ps.TopHashtags[1])
	assert.Equal(t, "a", ps.TopHashtags[2].Tag)
	assert.Equal(t, "h", ps.TopHashtags[9].Tag)

	for i := 1; i < len(ps.TopHashtags); i++ {
		assert.GreaterOrEqual(t, ps.TopHashtags[i-1].Count, ps.TopHashtags[i].Count)
	}
}

func TestEmptyAccumulator(t *testing.T) {
	acc := NewAccumulator()
	assert.Equal(t, 0, acc.Count())
	assert.Nil(t, acc.Finalize("nobody", 100))
	assert.Nil(t, Aggregate("nobody", 100, nil))
}

func TestZeroFollowers(t *testing.T) {
	ps := Aggregate("ghost", 0, []PostSample{{Likes: 4, Comments: 1, PublishedAt: day(0)}}, WithClock(clock))
	require.NotNil(t, ps)

	assert.True(t, ps.EngagementUndefined)
	assert.Equal(t, 0.0, ps.EngagementRatePct)
	assert.Equal(t, 4, ps.AvgLikes)
	assert.Equal(t, 1, ps.EstimatedValuePerPost)

	err := ps.EngagementErr()
	require.Error(t, err)
	assert.True(t, errors.Is(err, igerrors.ErrUndefinedMetric))
	assert.Equal(t, igerrors.KindUndefinedMetric, igerrors.Classify(err))
}

func TestEngagementErrNilWhenDefined(t *testing.T) {
	ps := Aggregate("u", 10, []PostSample{{Likes: 1, PublishedAt: day(0)}}, WithClock(clock))
	assert.NoError(t, ps.EngagementErr())

	var nilStats *ProfileStats
	assert.NoError(t, nilStats.EngagementErr())
}

func TestAvgCaptionLength(t *testing.T) {
	samples := []PostSample{
		NewPostSample(1, 0, day(0), "hello", false),
		NewPostSample(1, 0, day(1), "", false),
		NewPostSample(1, 0, day(2), "hey", false),
		NewPostSample(1, 0, day(3), "héllo wörld", false),
	}
	ps := Aggregate("u", 10, samples, WithClock(clock))
	require.NotNil(t, ps)

	// (5 + 3 + 11) / 3
	assert.Equal(t, 6, ps.AvgCaptionLength)

	none := Aggregate("u", 10, []PostSample{{Likes: 1, PublishedAt: day(0)}}, WithClock(clock))
	assert.Equal(t, 0, none.AvgCaptionLength)
}

func TestWeekdayHistogramUsesLocation(t *testing.T) {
	// Monday 01:00 UTC is still Sunday in New York
	published := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("timezone database unavailable")
	}

	ps := Aggregate("u", 10, []PostSample{{Likes: 1, PublishedAt: published}}, WithLocation(ny), WithClock(clock))
	assert.Equal(t, map[string]int{"Sunday": 1}, ps.WeekdayHistogram)
}

func TestAggregateIdempotent(t *testing.T) {
	samples := []PostSample{
		NewPostSample(10, 2, day(0), "#x #y", true),
		NewPostSample(20, 4, day(5), "#y", false),
	}

	first := Aggregate("u", 50, samples, WithLocation(time.UTC), WithClock(clock))
	second := Aggregate("u", 50, samples, WithLocation(time.UTC), WithClock(clock))
	assert.Equal(t, first, second)
}

func TestFinalizeDoesNotAlias(t *testing.T) {
	acc := NewAccumulator(WithClock(clock))
	acc.Add(PostSample{Likes: 1, PublishedAt: day(0)})

	ps := acc.Finalize("u", 10)
	acc.Add(PostSample{Likes: 2, PublishedAt: day(1)})

	assert.Equal(t, []int{1}, ps.LikesHistory)
	assert.Equal(t, 1, ps.SampleSize)
}

func TestEngagementRate(t *testing.T) {
	rate, ok := EngagementRate(160, 10, 1000)
	assert.True(t, ok)
	assert.Equal(t, 17.0, rate)

	rate, ok = EngagementRate(1, 0, 3)
	assert.True(t, ok)
	assert.Equal(t, 33.33, rate)

	_, ok = EngagementRate(1, 1, 0)
	assert.False(t, ok)
}

func TestEstimatedValue(t *testing.T) {
	assert.Equal(t, 40, EstimatedValue(160))
	assert.Equal(t, 0, EstimatedValue(3))
	assert.Equal(t, 1, EstimatedValue(7))
}
