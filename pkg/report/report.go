package report

import (
	stderrors "errors"
	"fmt"
	"time"

	"igreport/pkg/stats"
)

const (
	// LowEngagementPct is the engagement rate below which an account is flagged
	LowEngagementPct = 2.0
	// PerfectScore is the verdict score before penalties
	PerfectScore = 100
	// LowEngagementPenalty is deducted from the score for low engagement
	LowEngagementPenalty = 20
	// PassingScore must be exceeded for a passing verdict
	PassingScore = 80
)

// ErrNoProfile is returned when a report is built without the primary profile
var ErrNoProfile = stderrors.New("report needs the scanned profile")

// Level grades a recommendation
type Level string

const (
	LevelCritical Level = "critical"
	LevelWarning  Level = "warning"
	LevelAction   Level = "action"
	LevelOK       Level = "ok"
)

// Recommendation is one line of advice
type Recommendation struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}

// Verdict is the overall account score
type Verdict struct {
	Score  int  `json:"score" yaml:"score"`
	Passed bool `json:"passed" yaml:"passed"`
}

// Comparison is a scanned profile and an optional competitor
type Comparison struct {
	Self       *stats.ProfileStats `json:"self" yaml:"self"`
	Competitor *stats.ProfileStats `json:"competitor,omitempty" yaml:"competitor,omitempty"`
}

// Report is everything a renderer needs
type Report struct {
	Comparison      `json:",inline" yaml:",inline"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
	Verdict         Verdict          `json:"verdict" yaml:"verdict"`
	Charts          ChartSeries      `json:"charts" yaml:"charts"`
	CompetitorChart *ChartSeries     `json:"competitor_charts,omitempty" yaml:"competitor_charts,omitempty"`
	GeneratedAt     time.Time        `json:"generated_at" yaml:"generated_at"`
}

// Build assembles the report for a comparison
func Build(c Comparison, now time.Time) (*Report, error) {
	if c.Self == nil {
		return nil, ErrNoProfile
	}

	r := &Report{
		Comparison:      c,
		Recommendations: Recommendations(c),
		Verdict:         VerdictFor(c.Self),
		Charts:          NewChartSeries(c.Self),
		GeneratedAt:     now.UTC(),
	}
	if c.Competitor != nil {
		series := NewChartSeries(c.Competitor)
		r.CompetitorChart = &series
	}
	return r, nil
}

// Recommendations derives advice from the engagement rate and follower gap.
// An undefined engagement rate (zero followers) is never flagged as low.
func Recommendations(c Comparison) []Recommendation {
	var recs []Recommendation
	if c.Self == nil {
		return recs
	}

	if !c.Self.EngagementUndefined && c.Self.EngagementRatePct < LowEngagementPct {
		recs = append(recs, Recommendation{
			Level: LevelCritical,
			Text:  "Low Engagement. Recommendation: Increase Reels frequency to 3x/week.",
		})
	}

	if c.Competitor != nil && c.Competitor.Followers > c.Self.Followers {
		gap := c.Competitor.Followers - c.Self.Followers
		recs = append(recs,
			Recommendation{
				Level: LevelWarning,
				Text:  fmt.Sprintf("Competitor Gap: @%s leads by %s followers.", c.Competitor.Username, FormatNumber(gap)),
			},
			Recommendation{
				Level: LevelAction,
				Text:  "Analyze their Hashtag strategy.",
			},
		)
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Level: LevelOK,
			Text:  "Account is performing at Top Tier levels.",
		})
	}
	return recs
}

// VerdictFor scores a profile
func VerdictFor(p *stats.ProfileStats) Verdict {
	score := PerfectScore
	if p == nil || (!p.EngagementUndefined && p.EngagementRatePct < LowEngagementPct) {
		score -= LowEngagementPenalty
	}
	return Verdict{Score: score, Passed: score > PassingScore}
}

// MetricRow is one head-to-head line
type MetricRow struct {
	Label      string
	Self       string
	Competitor string
}

// HeadToHead lists the headline metrics side by side.
// Competitor cells are empty without a competitor.
func HeadToHead(c Comparison) []MetricRow {
	if c.Self == nil {
		return nil
	}

	cells := func(p *stats.ProfileStats) [6]string {
		if p == nil {
			return [6]string{}
		}
		return [6]string{
			FormatNumber(p.Followers),
			FormatEngagement(p),
			FormatNumber(p.AvgLikes),
			FormatNumber(p.AvgComments),
			"$" + FormatNumber(p.EstimatedValuePerPost),
			fmt.Sprintf("%d/%d", p.ImageCount, p.VideoCount),
		}
	}

	labels := [6]string{"Followers", "Engagement", "Avg likes", "Avg comments", "Value/Post", "Images/Reels"}
	mine, theirs := cells(c.Self), cells(c.Competitor)

	rows := make([]MetricRow, len(labels))
	for i, label := range labels {
		rows[i] = MetricRow{Label: label, Self: mine[i], Competitor: theirs[i]}
	}
	return rows
}
