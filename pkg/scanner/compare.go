package scanner

import (
	"context"

	"igreport/pkg/stats"
)

// Compare scans self, pauses for the competitor gap, then scans competitor.
// The competitor is not scanned when the self scan fails or finds no posts.
func (s *Scanner) Compare(ctx context.Context, self, competitor Request) (*stats.ProfileStats, *stats.ProfileStats, error) {
	mine, err := s.Scan(ctx, self)
	if err != nil {
		return nil, nil, err
	}
	if mine == nil {
		s.logger.WithField("competitor", competitor.Username).Info("Skipping competitor, nothing to compare against")
		return nil, nil, nil
	}

	s.logger.WithField("competitor", competitor.Username).Info("Scanning competitor")
	if err := s.competitor.Wait(ctx); err != nil {
		return mine, nil, err
	}

	theirs, err := s.Scan(ctx, competitor)
	if err != nil {
		return mine, nil, err
	}

	return mine, theirs, nil
}
