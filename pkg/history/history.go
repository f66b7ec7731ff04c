package history

import (
	"context"
	"fmt"
	"time"

	"igreport/pkg/config"
	"igreport/pkg/logger"
	"igreport/pkg/stats"
)

// Store persists finished scans so later runs can show growth
type Store interface {
	// Save records one snapshot
	Save(ctx context.Context, p *stats.ProfileStats) error
	// List returns up to limit snapshots for username, newest first.
	// A limit of zero or less returns all of them.
	List(ctx context.Context, username string, limit int) ([]stats.ProfileStats, error)
	// Latest returns the most recent snapshot for username
	Latest(ctx context.Context, username string) (*stats.ProfileStats, bool, error)
	Close() error
}

// Open returns the store described by cfg. A disabled history yields a nil
// store and no error.
func Open(ctx context.Context, cfg config.HistoryConfig, log logger.Logger) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.DSN == "" {
		return NewMemoryStore(), nil
	}
	store, err := NewPostgresStore(ctx, cfg.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

// Delta is the change between two snapshots of one profile
type Delta struct {
	Followers  int           `json:"followers" yaml:"followers"`
	Engagement float64       `json:"engagement_pct" yaml:"engagement_pct"`
	AvgLikes   int           `json:"avg_likes" yaml:"avg_likes"`
	Elapsed    time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Compare returns current minus previous
func Compare(previous, current *stats.ProfileStats) Delta {
	if previous == nil || current == nil {
		return Delta{}
	}
	return Delta{
		Followers:  current.Followers - previous.Followers,
		Engagement: stats.RoundTo(current.EngagementRatePct-previous.EngagementRatePct, 2),
		AvgLikes:   current.AvgLikes - previous.AvgLikes,
		Elapsed:    current.ScannedAt.Sub(previous.ScannedAt),
	}
}

// Record saves p and returns its delta against the previous snapshot
func Record(ctx context.Context, s Store, p *stats.ProfileStats) (Delta, bool, error) {
	if s == nil || p == nil {
		return Delta{}, false, nil
	}

	previous, ok, err := s.Latest(ctx, p.Username)
	if err != nil {
		return Delta{}, false, err
	}
	if err := s.Save(ctx, p); err != nil {
		return Delta{}, false, err
	}
	if !ok {
		return Delta{}, false, nil
	}
	return Compare(previous, p), true, nil
}
