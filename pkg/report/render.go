package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
	"igreport/pkg/instagram"
	"igreport/pkg/stats"
)

// Formats Write understands
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	gold   = lipgloss.Color("#D4AF37")
	maroon = lipgloss.Color("#800000")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(gold)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00A000"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C80000"))
	rivalStyle   = lipgloss.NewStyle().Foreground(maroon)
)

var levelMarks = map[Level]string{
	LevelCritical: "x",
	LevelWarning:  "!",
	LevelAction:   "->",
	LevelOK:       "+",
}

// Write renders r to w in the given format
func Write(w io.Writer, r *Report, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		_, err := io.WriteString(w, Text(r))
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Text renders the human-readable summary
func Text(r *Report) string {
	var b strings.Builder
	self, rival := r.Self, r.Competitor

	if rival != nil {
		b.WriteString(titleStyle.Render(fmt.Sprintf("@%s", self.Username)))
		b.WriteString(" vs ")
		b.WriteString(rivalStyle.Render(fmt.Sprintf("@%s", rival.Username)))
	} else {
		b.WriteString(titleStyle.Render(fmt.Sprintf("@%s", self.Username)))
	}
	fmt.Fprintf(&b, "\n%s\nLast %d posts, scanned %s\n\n",
		instagram.GetUserProfileURL(self.Username), self.SampleSize, r.GeneratedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString(metricsTable(r.Comparison))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Hashtag Intelligence"))
	b.WriteString("\n")
	if len(self.TopHashtags) == 0 {
		b.WriteString("  no hashtags\n")
	}
	for _, h := range self.TopHashtags {
		fmt.Fprintf(&b, "  #%s (%d)\n", h.Tag, h.Count)
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Posting Days"))
	b.WriteString("\n")
	b.WriteString(weekdayLine(self))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Strategic Recommendations"))
	b.WriteString("\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "  %s %s\n", levelMarks[rec.Level], rec.Text)
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Final Verdict"))
	b.WriteString(" ")
	score := fmt.Sprintf("%d/%d", r.Verdict.Score, PerfectScore)
	if r.Verdict.Passed {
		b.WriteString(passStyle.Render(score))
	} else {
		b.WriteString(failStyle.Render(score))
	}
	b.WriteString("\n")

	return b.String()
}

func metricsTable(c Comparison) string {
	headers := []string{"Metric", "@" + c.Self.Username}
	if c.Competitor != nil {
		headers = append(headers, "@"+c.Competitor.Username)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(gold)).
		Headers(headers...)

	for _, row := range HeadToHead(c) {
		cells := []string{row.Label, row.Self}
		if c.Competitor != nil {
			cells = append(cells, row.Competitor)
		}
		t.Row(cells...)
	}
	extra := []string{"Avg caption", fmt.Sprintf("%d chars", c.Self.AvgCaptionLength)}
	if c.Competitor != nil {
		extra = append(extra, fmt.Sprintf("%d chars", c.Competitor.AvgCaptionLength))
	}
	t.Row(extra...)

	return t.String()
}

// weekdayLine lists posting days busiest first, Monday-first on ties
func weekdayLine(p *stats.ProfileStats) string {
	type dayCount struct {
		day   string
		count int
	}

	var days []dayCount
	for _, d := range stats.Weekdays {
		if n := p.WeekdayHistogram[d]; n > 0 {
			days = append(days, dayCount{d, n})
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].count > days[j].count })

	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = fmt.Sprintf("%s %d", d.day, d.count)
	}
	if len(parts) == 0 {
		return "  none"
	}
	return "  " + strings.Join(parts, ", ")
}
