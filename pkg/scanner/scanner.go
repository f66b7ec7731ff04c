package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"igreport/pkg/errors"
	"igreport/pkg/instagram"
	"igreport/pkg/logger"
	"igreport/pkg/pacing"
	"igreport/pkg/stats"
)

// DefaultPostLimit is how many recent posts a scan reads when the request does not say
const DefaultPostLimit = 40

// ErrInvalidRequest is returned for requests that cannot be scanned at all
var ErrInvalidRequest = stderrors.New("invalid scan request")

// Request describes one profile scan
type Request struct {
	Username string
	// Session is a stored cookie session applied as-is
	Session *instagram.Session
	// Login is tried only when Session is missing or empty
	Login     *instagram.Credentials
	PostLimit int
}

// Scanner walks a profile's recent posts and folds them into ProfileStats
type Scanner struct {
	client     Client
	pacer      pacing.Pacer
	competitor pacing.Pacer
	logger     logger.Logger
	observer   Observer
	cache      ResultCache
	cacheTTL   time.Duration
	accOpts    []stats.AccumulatorOption
}

// Option configures a Scanner
type Option func(*Scanner)

// WithLogger sets the scanner logger
func WithLogger(log logger.Logger) Option {
	return func(s *Scanner) {
		s.logger = log
	}
}

// WithObserver registers progress callbacks
func WithObserver(o Observer) Option {
	return func(s *Scanner) {
		s.observer = o
	}
}

// WithCompetitorPacer sets the pause between the two scans of a comparison
func WithCompetitorPacer(p pacing.Pacer) Option {
	return func(s *Scanner) {
		s.competitor = p
	}
}

// WithCache serves repeated scans of the same profile from c for ttl
func WithCache(c ResultCache, ttl time.Duration) Option {
	return func(s *Scanner) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithAccumulatorOptions passes options to every scan's accumulator
func WithAccumulatorOptions(opts ...stats.AccumulatorOption) Option {
	return func(s *Scanner) {
		s.accOpts = append(s.accOpts, opts...)
	}
}

// New creates a Scanner. pacer runs between posts of one profile.
func New(client Client, pacer pacing.Pacer, opts ...Option) *Scanner {
	s := &Scanner{
		client:     client,
		pacer:      pacer,
		competitor: pacing.NewFixed(pacing.DefaultCompetitorDelay),
		logger:     logger.GetLogger(),
		observer:   Hooks{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pacer == nil {
		s.pacer = pacing.Default()
	}
	return s
}

// Scan reads up to PostLimit recent posts of a profile.
// A profile without posts yields (nil, nil). Failures come back as
// *errors.ScanError, except cancellation which returns the context error.
func (s *Scanner) Scan(ctx context.Context, req Request) (*stats.ProfileStats, error) {
	username := instagram.SanitizeUsername(req.Username)

	limit := req.PostLimit
	switch {
	case limit == 0:
		limit = DefaultPostLimit
	case limit < 0:
		return nil, fmt.Errorf("%w: post limit %d", ErrInvalidRequest, req.PostLimit)
	}

	log := s.logger.WithFields(map[string]interface{}{
		"username":   username,
		"post_limit": limit,
	})

	if !instagram.IsValidUsername(username) {
		err := errors.New(errors.ErrorTypeNotFound, 400, fmt.Sprintf("invalid username %q", req.Username))
		return nil, s.failure(ctx, username, err, log)
	}

	key := cacheKey(username, limit)
	if cached := s.fromCache(ctx, log, key); cached != nil {
		s.observer.ScanStarted(username, limit)
		s.observer.ScanFinished(username, cached, nil)
		return cached, nil
	}

	if err := s.authenticate(ctx, req, log); err != nil {
		return nil, err
	}

	s.observer.ScanStarted(username, limit)
	log.Info("Scanning profile")

	result, err := s.scan(ctx, username, limit, log)
	if err != nil {
		err = s.failure(ctx, username, err, log)
		s.observer.ScanFinished(username, nil, err)
		return nil, err
	}

	s.observer.ScanFinished(username, result, nil)

	if result == nil {
		log.Info("Profile has no posts")
		return nil, nil
	}

	if result.EngagementUndefined {
		log.WithError(result.EngagementErr()).Warn("Engagement rate undefined for a profile without followers")
	}

	log.InfoWithFields("Scan complete", map[string]interface{}{
		"sample_size":     result.SampleSize,
		"followers":       result.Followers,
		"engagement_rate": result.EngagementRatePct,
	})

	s.toCache(ctx, log, key, result)
	return result, nil
}

// authenticate applies the request session or logs in.
// A failed login leaves the scan unauthenticated.
func (s *Scanner) authenticate(ctx context.Context, req Request, log logger.Logger) error {
	if req.Session.Valid() {
		s.client.ApplySession(req.Session)
		return nil
	}
	if req.Login == nil || req.Login.Empty() {
		return nil
	}

	session, err := s.client.Login(ctx, *req.Login)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.LogDegraded(log, "login failed, scanning without a session", err)
		return nil
	}

	s.client.ApplySession(session)
	return nil
}

func (s *Scanner) scan(ctx context.Context, username string, limit int, log logger.Logger) (*stats.ProfileStats, error) {
	user, err := s.client.FetchProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	acc := stats.NewAccumulator(s.accOpts...)
	media := user.EdgeOwnerToTimelineMedia
	edges := media.Edges
	pageInfo := media.PageInfo

	for acc.Count() < limit {
		if len(edges) == 0 {
			if !pageInfo.HasNextPage || pageInfo.EndCursor == "" {
				break
			}
			page, err := s.client.FetchMedia(ctx, user.ID, pageInfo.EndCursor)
			if err != nil {
				return nil, err
			}
			if len(page.Edges) == 0 {
				break
			}
			edges, pageInfo = page.Edges, page.PageInfo
			continue
		}

		node := edges[0].Node
		edges = edges[1:]

		// Only pause when a post is about to be read, never after the last one
		if acc.Count() > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				return nil, err
			}
		}

		acc.Add(stats.NewPostSample(node.Likes(), node.Comments(), node.PublishedAt(), node.Caption(), node.IsVideo))

		s.observer.PostProcessed(username, acc.Count(), limit)
		logger.LogScanProgress(log, username, acc.Count(), limit)
	}

	name := user.Username
	if name == "" {
		name = username
	}
	return acc.Finalize(name, user.Followers()), nil
}

// failure converts err into what Scan returns and logs it
func (s *Scanner) failure(ctx context.Context, username string, err error, log logger.Logger) error {
	if ctx.Err() != nil {
		log.Info("Scan cancelled")
		return ctx.Err()
	}

	scanErr := errors.NewScanError(username, err)
	switch scanErr.Kind {
	case errors.KindCancelled:
		return err
	case errors.KindRemoteBlocked:
		logger.LogRemoteBlocked(log, username, errors.CooldownPeriod, err)
	default:
		log.WithError(err).Warn("Profile unavailable")
	}
	return scanErr
}

func cacheKey(username string, limit int) string {
	return fmt.Sprintf("scan:%s:%d", username, limit)
}

func (s *Scanner) fromCache(ctx context.Context, log logger.Logger, key string) *stats.ProfileStats {
	if s.cache == nil {
		return nil
	}
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("Scan cache read failed")
		return nil
	}
	if !ok {
		return nil
	}
	log.Debug("Serving scan from cache")
	return cached
}

func (s *Scanner) toCache(ctx context.Context, log logger.Logger, key string, result *stats.ProfileStats) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
		log.WithError(err).Warn("Scan cache write failed")
	}
}
