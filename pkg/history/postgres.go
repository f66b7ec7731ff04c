package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"igreport/pkg/logger"
	"igreport/pkg/stats"
)

// PostgresStore persists snapshots to PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewPostgresStore connects, pings and migrates the schema
func NewPostgresStore(ctx context.Context, dsn string, log logger.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	s := &PostgresStore{db: db, logger: log}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	log.Info("History store connected")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profile_snapshots (
			id                       BIGSERIAL PRIMARY KEY,
			username                 TEXT             NOT NULL,
			followers                INTEGER          NOT NULL,
			engagement_rate_pct      DOUBLE PRECISION NOT NULL DEFAULT 0,
			engagement_undefined     BOOLEAN          NOT NULL DEFAULT FALSE,
			avg_likes                INTEGER          NOT NULL DEFAULT 0,
			avg_comments             INTEGER          NOT NULL DEFAULT 0,
			video_count              INTEGER          NOT NULL DEFAULT 0,
			image_count              INTEGER          NOT NULL DEFAULT 0,
			avg_caption_length       INTEGER          NOT NULL DEFAULT 0,
			estimated_value_per_post INTEGER          NOT NULL DEFAULT 0,
			sample_size              INTEGER          NOT NULL,
			likes_history            JSONB            NOT NULL DEFAULT '[]',
			top_hashtags             JSONB            NOT NULL DEFAULT '[]',
			weekday_histogram        JSONB            NOT NULL DEFAULT '{}',
			scanned_at               TIMESTAMPTZ      NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_profile_snapshots_user_time
			ON profile_snapshots(username, scanned_at DESC);
	`)
	return err
}

func (s *PostgresStore) Save(ctx context.Context, p *stats.ProfileStats) error {
	if p == nil {
		return nil
	}

	likes, err := json.Marshal(nonNilInts(p.LikesHistory))
	if err != nil {
		return fmt.Errorf("postgres: encode likes: %w", err)
	}
	tags, err := json.Marshal(nonNilTags(p.TopHashtags))
	if err != nil {
		return fmt.Errorf("postgres: encode hashtags: %w", err)
	}
	weekdays, err := json.Marshal(nonNilHistogram(p.WeekdayHistogram))
	if err != nil {
		return fmt.Errorf("postgres: encode weekdays: %w", err)
	}

	scannedAt := p.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profile_snapshots (
			username, followers, engagement_rate_pct, engagement_undefined,
			avg_likes, avg_comments, video_count, image_count,
			avg_caption_length, estimated_value_per_post, sample_size,
			likes_history, top_hashtags, weekday_histogram, scanned_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		p.Username, p.Followers, p.EngagementRatePct, p.EngagementUndefined,
		p.AvgLikes, p.AvgComments, p.VideoCount, p.ImageCount,
		p.AvgCaptionLength, p.EstimatedValuePerPost, p.SampleSize,
		string(likes), string(tags), string(weekdays), scannedAt.UTC(),
	)
	if err != nil {
		s.logger.WithError(err).WithField("username", p.Username).Error("Failed to save snapshot")
		return fmt.Errorf("postgres: insert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, username string, limit int) ([]stats.ProfileStats, error) {
	query := `
		SELECT username, followers, engagement_rate_pct, engagement_undefined,
		       avg_likes, avg_comments, video_count, image_count,
		       avg_caption_length, estimated_value_per_post, sample_size,
		       likes_history, top_hashtags, weekday_histogram, scanned_at
		FROM profile_snapshots
		WHERE username = $1
		ORDER BY scanned_at DESC, id DESC`
	args := []interface{}{username}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []stats.ProfileStats
	for rows.Next() {
		var (
			p                     stats.ProfileStats
			likes, tags, weekdays []byte
		)
		if err := rows.Scan(
			&p.Username, &p.Followers, &p.EngagementRatePct, &p.EngagementUndefined,
			&p.AvgLikes, &p.AvgComments, &p.VideoCount, &p.ImageCount,
			&p.AvgCaptionLength, &p.EstimatedValuePerPost, &p.SampleSize,
			&likes, &tags, &weekdays, &p.ScannedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if err := decodeColumns(&p, likes, tags, weekdays); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Latest(ctx context.Context, username string) (*stats.ProfileStats, bool, error) {
	list, err := s.List(ctx, username, 1)
	if err != nil || len(list) == 0 {
		return nil, false, err
	}
	return &list[0], true, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func decodeColumns(p *stats.ProfileStats, likes, tags, weekdays []byte) error {
	if err := json.Unmarshal(likes, &p.LikesHistory); err != nil {
		return fmt.Errorf("postgres: decode likes: %w", err)
	}
	if err := json.Unmarshal(tags, &p.TopHashtags); err != nil {
		return fmt.Errorf("postgres: decode hashtags: %w", err)
	}
	if err := json.Unmarshal(weekdays, &p.WeekdayHistogram); err != nil {
		return fmt.Errorf("postgres: decode weekdays: %w", err)
	}
	return nil
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilTags(v []stats.HashtagCount) []stats.HashtagCount {
	if v == nil {
		return []stats.HashtagCount{}
	}
	return v
}

func nonNilHistogram(v map[string]int) map[string]int {
	if v == nil {
		return map[string]int{}
	}
	return v
}
