package scanner

import (
	"context"
	"time"

	"igreport/pkg/instagram"
	"igreport/pkg/stats"
)

// Source reads profiles and their timeline pages
type Source interface {
	FetchProfile(ctx context.Context, username string) (*instagram.User, error)
	FetchMedia(ctx context.Context, userID, after string) (*instagram.EdgeOwnerToTimelineMedia, error)
}

// Authenticator establishes the session subsequent reads run under
type Authenticator interface {
	Login(ctx context.Context, creds instagram.Credentials) (*instagram.Session, error)
	ApplySession(s *instagram.Session)
}

// Client is what a Scanner needs from Instagram. *instagram.Client satisfies it.
type Client interface {
	Source
	Authenticator
}

// ResultCache stores finished scans
type ResultCache interface {
	Get(ctx context.Context, key string) (*stats.ProfileStats, bool, error)
	Set(ctx context.Context, key string, value *stats.ProfileStats, ttl time.Duration) error
}

var _ Client = (*instagram.Client)(nil)
