package history

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"igreport/pkg/config"
	"igreport/pkg/logger"
	"igreport/pkg/stats"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func snapshot(username string, followers int, at time.Time) *stats.ProfileStats {
	return &stats.ProfileStats{
		Username:          username,
		Followers:         followers,
		EngagementRatePct: 4.25,
		AvgLikes:          followers / 25,
		AvgComments:       3,
		LikesHistory:      []int{40, 42},
		ImageCount:        2,
		TopHashtags:       []stats.HashtagCount{{Tag: "travel", Count: 2}},
		WeekdayHistogram:  map[string]int{"Monday": 2},
		SampleSize:        2,
		ScannedAt:         at,
	}
}

func TestMemoryStoreList(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Save(ctx, snapshot("me", 1000, base)))
	require.NoError(t, s.Save(ctx, snapshot("me", 1200, base.Add(48*time.Hour))))
	require.NoError(t, s.Save(ctx, snapshot("me", 1100, base.Add(24*time.Hour))))
	require.NoError(t, s.Save(ctx, snapshot("other", 5, base)))

	all, err := s.List(ctx, "me", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1200, 1100, 1000}, []int{all[0].Followers, all[1].Followers, all[2].Followers})

	two, err := s.List(ctx, "me", 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	none, err := s.List(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreLatest(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Latest(ctx, "me")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, snapshot("me", 1000, base)))
	require.NoError(t, s.Save(ctx, snapshot("me", 1001, base)))

	latest, ok, err := s.Latest(ctx, "me")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1001, latest.Followers, "equal timestamps resolve to the last save")
}

func TestCompare(t *testing.T) {
	prev := snapshot("me", 1000, base)
	cur := snapshot("me", 1250, base.Add(72*time.Hour))
	cur.EngagementRatePct = 5.1

	d := Compare(prev, cur)
	assert.Equal(t, 250, d.Followers)
	assert.Equal(t, 0.85, d.Engagement)
	assert.Equal(t, 10, d.AvgLikes)
	assert.Equal(t, 72*time.Hour, d.Elapsed)

	assert.Equal(t, Delta{}, Compare(nil, cur))
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := Record(ctx, s, snapshot("me", 1000, base))
	require.NoError(t, err)
	assert.False(t, ok, "first snapshot has nothing to compare against")

	d, ok, err := Record(ctx, s, snapshot("me", 900, base.Add(time.Hour)))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -100, d.Followers)

	_, ok, err = Record(ctx, nil, snapshot("me", 1, base))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNopLogger()

	s, err := Open(ctx, config.HistoryConfig{}, log)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open(ctx, config.HistoryConfig{Enabled: true}, log)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

// Runs against a real database when IGREPORT_TEST_DATABASE_URL is set
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("IGREPORT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("IGREPORT_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn, logger.NewNopLogger())
	require.NoError(t, err)
	defer s.Close()

	user := fmt.Sprintf("igreport_test_%d", time.Now().UnixNano())
	require.NoError(t, s.Save(ctx, snapshot(user, 1000, base)))
	later := snapshot(user, 1500, base.Add(time.Hour))
	later.LikesHistory = nil
	later.WeekdayHistogram = nil
	require.NoError(t, s.Save(ctx, later))

	list, err := s.List(ctx, user, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1500, list[0].Followers)
	assert.Empty(t, list[0].LikesHistory)
	assert.True(t, base.Add(time.Hour).Equal(list[0].ScannedAt))

	first := list[1]
	assert.Equal(t, 4.25, first.EngagementRatePct)
	assert.Equal(t, []int{40, 42}, first.LikesHistory)
	assert.Equal(t, []stats.HashtagCount{{Tag: "travel", Count: 2}}, first.TopHashtags)
	assert.Equal(t, map[string]int{"Monday": 2}, first.WeekdayHistogram)

	latest, ok, err := s.Latest(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1500, latest.Followers)
}
