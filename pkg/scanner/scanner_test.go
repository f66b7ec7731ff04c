package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"igreport/pkg/errors"
	"igreport/pkg/instagram"
	"igreport/pkg/instagram/instagramtest"
	"igreport/pkg/logger"
	"igreport/pkg/pacing"
	"igreport/pkg/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// countingPacer records how often a scan paused
type countingPacer struct {
	mu    sync.Mutex
	calls int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return ctx.Err()
}

func (p *countingPacer) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fixture struct {
	fake    *instagramtest.Server
	scanner *Scanner
	pacer   *countingPacer
	log     *logger.TestLogger
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	fake := instagramtest.NewServer()
	t.Cleanup(fake.Close)

	log := logger.NewTestLogger()
	client := instagram.NewClient(5*time.Second, logger.NewNopLogger(), instagram.WithBaseURL(fake.URL))
	pacer := &countingPacer{}

	base := []Option{
		WithLogger(log),
		WithCompetitorPacer(pacing.Noop{}),
		WithAccumulatorOptions(stats.WithLocation(time.UTC), stats.WithClock(func() time.Time { return fixedNow })),
	}

	return &fixture{
		fake:    fake,
		scanner: New(client, pacer, append(base, opts...)...),
		pacer:   pacer,
		log:     log,
	}
}

// monday is 2026-03-02
func day(offset int) time.Time {
	return time.Date(2026, 3, 2+offset, 10, 0, 0, 0, time.UTC)
}

func numbered(n int) []instagramtest.Post {
	out := make([]instagramtest.Post, n)
	for i := range out {
		out[i] = instagramtest.Post{Likes: i + 1, Comments: 1, TakenAt: day(0), Caption: "post"}
	}
	return out
}

func TestScanFivePostScenario(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{
		Username:  "me",
		Followers: 1000,
		Posts: []instagramtest.Post{
			{Likes: 100, Comments: 10, TakenAt: day(0), Caption: "morning #travel"},
			{Likes: 200, Comments: 10, TakenAt: day(1), Caption: "lunch #food", IsVideo: true},
			{Likes: 150, Comments: 10, TakenAt: day(0), Caption: "#travel #food"},
			{Likes: 50, Comments: 10, TakenAt: day(2)},
			{Likes: 300, Comments: 10, TakenAt: day(7), Caption: "back home"},
		},
	})

	result, err := f.scanner.Scan(context.Background(), Request{Username: "me"})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "me", result.Username)
	assert.Equal(t, 1000, result.Followers)
	assert.Equal(t, 160, result.AvgLikes)
	assert.Equal(t, 10, result.AvgComments)
	assert.Equal(t, 17.0, result.EngagementRatePct)
	assert.False(t, result.EngagementUndefined)
	assert.Equal(t, 40, result.EstimatedValuePerPost)
	assert.Equal(t, 5, result.SampleSize)
	assert.Equal(t, []int{100, 200, 150, 50, 300}, result.LikesHistory)
	assert.Equal(t, 1, result.VideoCount)
	assert.Equal(t, 4, result.ImageCount)
	assert.Equal(t, []stats.HashtagCount{{Tag: "travel", Count: 2}, {Tag: "food", Count: 2}}, result.TopHashtags)
	assert.Equal(t, 3, result.WeekdayHistogram["Monday"])
	assert.Equal(t, 1, result.WeekdayHistogram["Tuesday"])
	assert.Equal(t, 1, result.WeekdayHistogram["Wednesday"])
	assert.Equal(t, fixedNow, result.ScannedAt)

	assert.Equal(t, 4, f.pacer.Calls(), "no pause after the last post")
	assert.True(t, f.log.HasMessage("Scan complete"))
}

func TestScanStopsAtPostLimitAcrossPages(t *testing.T) {
	f := newFixture(t)
	f.fake.SetPageSize(2)
	f.fake.AddProfile(instagramtest.Profile{Username: "paged", Followers: 50, Posts: numbered(7)})

	result, err := f.scanner.Scan(context.Background(), Request{Username: "paged", PostLimit: 5})
	require.NoError(t, err)

	assert.Equal(t, 5, result.SampleSize)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, result.LikesHistory)
	assert.Equal(t, 4, f.pacer.Calls())
	assert.Equal(t, 2, f.fake.MediaRequestCount())
}

func TestScanReadsEverythingBelowLimit(t *testing.T) {
	f := newFixture(t)
	f.fake.SetPageSize(2)
	f.fake.AddProfile(instagramtest.Profile{Username: "small", Followers: 50, Posts: numbered(3)})

	result, err := f.scanner.Scan(context.Background(), Request{Username: "small"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.SampleSize)
	assert.Equal(t, 2, f.pacer.Calls())
}

func TestScanDefaultLimit(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{Username: "busy", Followers: 50, Posts: numbered(45)})

	result, err := f.scanner.Scan(context.Background(), Request{Username: "busy"})
	require.NoError(t, err)

	assert.Equal(t, DefaultPostLimit, result.SampleSize)
	assert.Len(t, result.LikesHistory, DefaultPostLimit)
	assert.Equal(t, DefaultPostLimit-1, f.pacer.Calls())
}

func TestScanTruncationInvariant(t *testing.T) {
	for _, limit := range []int{1, 2, 11, 12, 13, 30} {
		t.Run(fmt.Sprintf("limit %d", limit), func(t *testing.T) {
			f := newFixture(t)
			f.fake.AddProfile(instagramtest.Profile{Username: "many", Followers: 10, Posts: numbered(25)})

			result, err := f.scanner.Scan(context.Background(), Request{Username: "many", PostLimit: limit})
			require.NoError(t, err)

			want := limit
			if want > 25 {
				want = 25
			}
			assert.Equal(t, want, result.SampleSize)
			assert.Equal(t, result.SampleSize, result.VideoCount+result.ImageCount)
			assert.Len(t, result.LikesHistory, result.SampleSize)
			assert.Equal(t, result.SampleSize-1, f.pacer.Calls())
		})
	}
}

func TestScanNegativeLimit(t *testing.T) {
	f := newFixture(t)

	result, err := f.scanner.Scan(context.Background(), Request{Username: "me", PostLimit: -1})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Zero(t, f.fake.RequestCount())
}

func TestScanWithoutPostsIsAbsent(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{Username: "empty", Followers: 10})

	result, err := f.scanner.Scan(context.Background(), Request{Username: "empty"})
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.Zero(t, f.pacer.Calls())
	assert.True(t, f.log.HasMessage("Profile has no posts"))
}

func TestScanFailureKinds(t *testing.T) {
	tests := []struct {
		name     string
		username string
		setup    func(fake *instagramtest.Server)
		kind     errors.Kind
	}{
		{
			name:     "unknown user",
			username: "ghost",
			setup:    func(fake *instagramtest.Server) {},
			kind:     errors.KindProfileUnavailable,
		},
		{
			name:     "invalid username",
			username: "not a user",
			setup:    func(fake *instagramtest.Server) {},
			kind:     errors.KindProfileUnavailable,
		},
		{
			name:     "private profile",
			username: "locked",
			setup: func(fake *instagramtest.Server) {
				fake.AddProfile(instagramtest.Profile{Username: "locked", Private: true, Posts: numbered(3)})
			},
			kind: errors.KindProfileUnavailable,
		},
		{
			name:     "private profile named like a throttle hint",
			username: "waitlist",
			setup: func(fake *instagramtest.Server) {
				fake.AddProfile(instagramtest.Profile{Username: "waitlist", Private: true, Posts: numbered(3)})
			},
			kind: errors.KindProfileUnavailable,
		},
		{
			name:     "private profile without posts",
			username: "quiet",
			setup: func(fake *instagramtest.Server) {
				fake.AddProfile(instagramtest.Profile{Username: "quiet", Private: true})
			},
			kind: errors.KindProfileUnavailable,
		},
		{
			name:     "unknown user named like a throttle hint",
			username: "await.me",
			setup:    func(fake *instagramtest.Server) {},
			kind:     errors.KindProfileUnavailable,
		},
		{
			name:     "server error",
			username: "broken",
			setup: func(fake *instagramtest.Server) {
				fake.FailProfile("broken", http.StatusInternalServerError, "")
			},
			kind: errors.KindProfileUnavailable,
		},
		{
			name:     "too many requests",
			username: "popular",
			setup: func(fake *instagramtest.Server) {
				fake.FailProfile("popular", http.StatusTooManyRequests, "")
			},
			kind: errors.KindRemoteBlocked,
		},
		{
			name:     "unauthorized",
			username: "popular",
			setup: func(fake *instagramtest.Server) {
				fake.FailProfile("popular", http.StatusUnauthorized, "")
			},
			kind: errors.KindRemoteBlocked,
		},
		{
			name:     "please wait",
			username: "popular",
			setup: func(fake *instagramtest.Server) {
				fake.FailProfile("popular", http.StatusBadRequest, "Please wait a few minutes before you try again.")
			},
			kind: errors.KindRemoteBlocked,
		},
		{
			name:     "blocked mid-scan",
			username: "paged",
			setup: func(fake *instagramtest.Server) {
				fake.SetPageSize(2)
				fake.AddProfile(instagramtest.Profile{Username: "paged", ID: "42", Followers: 5, Posts: numbered(5)})
				fake.FailMedia("42", http.StatusTooManyRequests, "")
			},
			kind: errors.KindRemoteBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f.fake)

			result, err := f.scanner.Scan(context.Background(), Request{Username: tt.username})
			require.Error(t, err)
			assert.Nil(t, result, "partial results are discarded")

			var scanErr *errors.ScanError
			require.True(t, stderrors.As(err, &scanErr))
			assert.Equal(t, tt.kind, scanErr.Kind)

			switch tt.kind {
			case errors.KindRemoteBlocked:
				assert.ErrorIs(t, err, errors.ErrRemoteBlocked)
				assert.NotErrorIs(t, err, errors.ErrProfileUnavailable)
				assert.True(t, f.log.HasMessage("Instagram is throttling requests"))
				assert.Contains(t, errors.Guidance(err), "15 minutes")
			case errors.KindProfileUnavailable:
				assert.ErrorIs(t, err, errors.ErrProfileUnavailable)
				assert.NotErrorIs(t, err, errors.ErrRemoteBlocked)
				assert.True(t, f.log.HasMessage("Profile unavailable"))
			}
		})
	}
}

func TestScanDegradedLogin(t *testing.T) {
	f := newFixture(t)
	f.fake.AddAccount("me", "secret")
	f.fake.AddProfile(instagramtest.Profile{Username: "target", Followers: 10, Posts: numbered(2)})

	result, err := f.scanner.Scan(context.Background(), Request{
		Username: "target",
		Login:    &instagram.Credentials{Username: "me", Password: "wrong"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.SampleSize)

	msg, ok := f.log.FindMessage("Continuing in degraded mode")
	require.True(t, ok)
	assert.Equal(t, "WARN", msg.Level)
	assert.Equal(t, true, msg.Fields["degraded"])
	assert.NotContains(t, f.fake.LastCookie(), "sessionid")
}

func TestScanLoginAppliesSession(t *testing.T) {
	f := newFixture(t)
	f.fake.AddAccount("me", "secret")
	f.fake.AddProfile(instagramtest.Profile{Username: "target", Followers: 10, Posts: numbered(1)})

	_, err := f.scanner.Scan(context.Background(), Request{
		Username: "target",
		Login:    &instagram.Credentials{Username: "me", Password: "secret"},
	})
	require.NoError(t, err)

	assert.Contains(t, f.fake.LastCookie(), "sessionid=session-me")
	assert.False(t, f.log.HasMessage("Continuing in degraded mode"))
}

func TestScanStoredSessionSkipsLogin(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{Username: "target", Followers: 10, Posts: numbered(1)})

	_, err := f.scanner.Scan(context.Background(), Request{
		Username: "target",
		Session:  &instagram.Session{SessionID: "stored", CSRFToken: "tok"},
		Login:    &instagram.Credentials{Username: "me", Password: "secret"},
	})
	require.NoError(t, err)

	assert.Contains(t, f.fake.LastCookie(), "sessionid=stored")
	assert.Equal(t, 1, f.fake.RequestCount(), "only the profile was requested")
}

func TestScanCancelledWhilePacing(t *testing.T) {
	fake := instagramtest.NewServer()
	t.Cleanup(fake.Close)
	fake.AddProfile(instagramtest.Profile{Username: "slow", Followers: 10, Posts: numbered(5)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pacer := pacing.PacerFunc(func(ctx context.Context) error {
		cancel()
		return pacing.Sleep(ctx, time.Minute)
	})
	client := instagram.NewClient(5*time.Second, logger.NewNopLogger(), instagram.WithBaseURL(fake.URL))
	s := New(client, pacer, WithLogger(logger.NewNopLogger()))

	start := time.Now()
	result, err := s.Scan(ctx, Request{Username: "slow"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.KindCancelled, errors.Classify(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestScanIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{
		Username:  "steady",
		Followers: 300,
		Posts: []instagramtest.Post{
			{Likes: 10, Comments: 2, TakenAt: day(0), Caption: "#a #b"},
			{Likes: 20, Comments: 4, TakenAt: day(3), Caption: "#b", IsVideo: true},
		},
	})

	first, err := f.scanner.Scan(context.Background(), Request{Username: "steady"})
	require.NoError(t, err)
	second, err := f.scanner.Scan(context.Background(), Request{Username: "steady"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestScanZeroFollowers(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{Username: "new", Followers: 0, Posts: numbered(2)})

	result, err := f.scanner.Scan(context.Background(), Request{Username: "new"})
	require.NoError(t, err)

	assert.True(t, result.EngagementUndefined)
	assert.Zero(t, result.EngagementRatePct)
	assert.ErrorIs(t, result.EngagementErr(), errors.ErrUndefinedMetric)
	assert.Len(t, f.log.GetMessagesByLevel("WARN"), 1)
}

func TestScanObserver(t *testing.T) {
	var started, finished []string
	var progress []int

	hooks := Hooks{
		OnStart: func(username string, limit int) {
			started = append(started, fmt.Sprintf("%s/%d", username, limit))
		},
		OnPost: func(username string, processed, limit int) {
			progress = append(progress, processed)
		},
		OnFinished: func(username string, result *stats.ProfileStats, err error) {
			finished = append(finished, fmt.Sprintf("%s:%v:%v", username, result != nil, err != nil))
		},
	}

	f := newFixture(t, WithObserver(hooks))
	f.fake.AddProfile(instagramtest.Profile{Username: "watched", Followers: 10, Posts: numbered(3)})

	_, err := f.scanner.Scan(context.Background(), Request{Username: "watched", PostLimit: 10})
	require.NoError(t, err)
	_, err = f.scanner.Scan(context.Background(), Request{Username: "ghost", PostLimit: 10})
	require.Error(t, err)

	assert.Equal(t, []string{"watched/10", "ghost/10"}, started)
	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Equal(t, []string{"watched:true:false", "ghost:false:true"}, finished)
}

func TestScanObserverOnCacheHit(t *testing.T) {
	var events []string
	hooks := Hooks{
		OnStart: func(username string, limit int) {
			events = append(events, fmt.Sprintf("start %s/%d", username, limit))
		},
		OnPost: func(username string, processed, limit int) {
			events = append(events, fmt.Sprintf("post %d", processed))
		},
		OnFinished: func(username string, result *stats.ProfileStats, err error) {
			events = append(events, fmt.Sprintf("done %s:%v:%v", username, result != nil, err != nil))
		},
	}

	f := newFixture(t, WithObserver(hooks), WithCache(newMapCache(), time.Minute))
	f.fake.AddProfile(instagramtest.Profile{Username: "watched", Followers: 10, Posts: numbered(2)})

	_, err := f.scanner.Scan(context.Background(), Request{Username: "watched", PostLimit: 5})
	require.NoError(t, err)
	events = nil

	cached, err := f.scanner.Scan(context.Background(), Request{Username: "watched", PostLimit: 5})
	require.NoError(t, err)
	require.NotNil(t, cached)

	assert.Equal(t, []string{"start watched/5", "done watched:true:false"}, events)
}

func TestObservers(t *testing.T) {
	var calls []string
	record := func(name string) Hooks {
		return Hooks{
			OnStart:    func(string, int) { calls = append(calls, name+":start") },
			OnPost:     func(string, int, int) { calls = append(calls, name+":post") },
			OnFinished: func(string, *stats.ProfileStats, error) { calls = append(calls, name+":done") },
		}
	}

	o := Observers(record("a"), nil, record("b"))
	o.ScanStarted("x", 1)
	o.PostProcessed("x", 1, 1)
	o.ScanFinished("x", nil, nil)

	assert.Equal(t, []string{"a:start", "b:start", "a:post", "b:post", "a:done", "b:done"}, calls)
}

// mapCache is an in-memory ResultCache
type mapCache struct {
	entries map[string]*stats.ProfileStats
	ttls    map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string]*stats.ProfileStats{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) Get(ctx context.Context, key string) (*stats.ProfileStats, bool, error) {
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value *stats.ProfileStats, ttl time.Duration) error {
	c.entries[key] = value
	c.ttls[key] = ttl
	return nil
}

func TestScanCache(t *testing.T) {
	cache := newMapCache()
	f := newFixture(t, WithCache(cache, time.Minute))
	f.fake.AddProfile(instagramtest.Profile{Username: "cached", Followers: 10, Posts: numbered(3)})
	f.fake.AddProfile(instagramtest.Profile{Username: "empty", Followers: 10})

	first, err := f.scanner.Scan(context.Background(), Request{Username: "cached"})
	require.NoError(t, err)
	requests := f.fake.RequestCount()

	second, err := f.scanner.Scan(context.Background(), Request{Username: "@cached"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, requests, f.fake.RequestCount())
	assert.Equal(t, time.Minute, cache.ttls["scan:cached:40"])

	// a different limit is a different scan
	_, err = f.scanner.Scan(context.Background(), Request{Username: "cached", PostLimit: 2})
	require.NoError(t, err)
	assert.Greater(t, f.fake.RequestCount(), requests)

	absent, err := f.scanner.Scan(context.Background(), Request{Username: "empty"})
	require.NoError(t, err)
	assert.Nil(t, absent)
	assert.NotContains(t, cache.entries, "scan:empty:40")
}

func TestCompare(t *testing.T) {
	gap := &countingPacer{}
	f := newFixture(t, WithCompetitorPacer(gap))
	f.fake.AddProfile(instagramtest.Profile{Username: "me", Followers: 100, Posts: numbered(2)})
	f.fake.AddProfile(instagramtest.Profile{Username: "rival", Followers: 900, Posts: numbered(3)})

	mine, theirs, err := f.scanner.Compare(context.Background(),
		Request{Username: "me"}, Request{Username: "rival"})
	require.NoError(t, err)

	assert.Equal(t, "me", mine.Username)
	assert.Equal(t, "rival", theirs.Username)
	assert.Equal(t, 1, gap.Calls())
	assert.Equal(t, 1+2, f.pacer.Calls())
}

func TestCompareStopsWhenSelfFails(t *testing.T) {
	gap := &countingPacer{}
	f := newFixture(t, WithCompetitorPacer(gap))
	f.fake.FailProfile("me", http.StatusTooManyRequests, "")
	f.fake.AddProfile(instagramtest.Profile{Username: "rival", Followers: 900, Posts: numbered(3)})

	mine, theirs, err := f.scanner.Compare(context.Background(),
		Request{Username: "me"}, Request{Username: "rival"})

	assert.True(t, errors.IsRemoteBlocked(err))
	assert.Nil(t, mine)
	assert.Nil(t, theirs)
	assert.Zero(t, gap.Calls())
	assert.Equal(t, 1, f.fake.RequestCount())
}

func TestCompareSkipsCompetitorWhenSelfHasNoPosts(t *testing.T) {
	gap := &countingPacer{}
	f := newFixture(t, WithCompetitorPacer(gap))
	f.fake.AddProfile(instagramtest.Profile{Username: "empty", Followers: 100})
	f.fake.AddProfile(instagramtest.Profile{Username: "rival", Followers: 900, Posts: numbered(3)})

	mine, theirs, err := f.scanner.Compare(context.Background(),
		Request{Username: "empty"}, Request{Username: "rival"})

	require.NoError(t, err)
	assert.Nil(t, mine)
	assert.Nil(t, theirs)
	assert.Zero(t, gap.Calls())
	assert.Equal(t, 1, f.fake.RequestCount())
}

func TestCompareSelfWithoutPostsIgnoresFailingCompetitor(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{Username: "empty", Followers: 100})
	f.fake.FailProfile("rival", http.StatusTooManyRequests, "")

	mine, theirs, err := f.scanner.Compare(context.Background(),
		Request{Username: "empty"}, Request{Username: "rival"})

	assert.NoError(t, err)
	assert.Nil(t, mine)
	assert.Nil(t, theirs)
}

func TestCompareKeepsSelfWhenCompetitorFails(t *testing.T) {
	f := newFixture(t)
	f.fake.AddProfile(instagramtest.Profile{Username: "me", Followers: 100, Posts: numbered(2)})

	mine, theirs, err := f.scanner.Compare(context.Background(),
		Request{Username: "me"}, Request{Username: "ghost"})

	assert.True(t, errors.IsProfileUnavailable(err))
	require.NotNil(t, mine)
	assert.Nil(t, theirs)
}

func TestScanRequestTimeoutIsProfileUnavailable(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
	}))
	t.Cleanup(slow.Close)

	client := instagram.NewClient(50*time.Millisecond, logger.NewNopLogger(), instagram.WithBaseURL(slow.URL))
	s := New(client, pacing.Noop{}, WithLogger(logger.NewNopLogger()))

	result, err := s.Scan(context.Background(), Request{Username: "natgeo"})
	require.Error(t, err)
	assert.Nil(t, result)

	var scanErr *errors.ScanError
	require.True(t, stderrors.As(err, &scanErr), "a timeout is a scan failure, not a cancellation")
	assert.Equal(t, errors.KindProfileUnavailable, scanErr.Kind)
	assert.ErrorIs(t, err, errors.ErrProfileUnavailable)
	assert.Equal(t, "Could not read @natgeo: verify the username or authenticate.", errors.Guidance(err))
}
