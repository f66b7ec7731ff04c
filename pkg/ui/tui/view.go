package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"igreport/pkg/report"
)

const logo = "IGREPORT  ·  profile analytics"

// View renders the whole screen
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	width := m.width - 2
	sections := []string{
		logoStyle.Render(logo),
		m.renderScansPanel(width),
		m.renderLogsPanel(width),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render("q quit • ? help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderScansPanel(width int) string {
	title := titleStyle.Render(" SCANS ")

	if len(m.scans) == 0 {
		return panelStyle.Width(width).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, dimStyle.Render("Waiting for the first scan...")),
		)
	}

	var rows []string
	for _, item := range m.scans {
		rows = append(rows, m.renderScan(item))
	}

	elapsed := m.now().Sub(m.sessionStart)
	rows = append(rows, "", fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(elapsed))))

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...),
	)
}

func (m *Model) renderScan(item *ScanItem) string {
	name := StateStyle(item.State).Render("@" + item.Username)

	switch item.State {
	case ScanCompleted:
		r := item.Result
		return fmt.Sprintf("%s %s %d posts • %s followers • %s engagement",
			successStyle.Render("✓"), name, r.SampleSize, report.FormatNumber(r.Followers), report.FormatEngagement(r))
	case ScanEmpty:
		return fmt.Sprintf("%s %s has no posts", warningStyle.Render("!"), name)
	case ScanFailed:
		return fmt.Sprintf("%s %s %s", errorStyle.Render("✗"), name, dimStyle.Render(item.Err.Error()))
	}

	ratio := 0.0
	if item.Limit > 0 {
		ratio = float64(item.Processed) / float64(item.Limit)
	}

	status := fmt.Sprintf("%d/%d", item.Processed, item.Limit)
	if remaining := m.PauseRemaining(); remaining > 0 {
		status += fmt.Sprintf(" • next post in %.1fs", remaining.Seconds())
	}
	if avg := m.AveragePause(); avg > 0 && item.Processed > 0 {
		left := time.Duration(item.Limit-item.Processed) * avg
		status += " • ~" + formatDuration(left) + " left"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("%s %s %s", m.spinner.View(), name, dimStyle.Render(status)),
		"  "+m.bar.ViewAs(ratio),
	)
}

func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" ACTIVITY ")

	start := max(0, len(m.logMessages)-8)

	var logs []string
	for _, entry := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(entry.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(entry.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", entry.Level))

		message := entry.Message
		if limit := width - 25; limit > 3 && len(message) > limit {
			message = message[:limit-3] + "..."
		}

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, dimStyle.Render(message)))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = dimStyle.Render("No activity yet...")
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp(width int) string {
	help := `  q        quit (cancels the scan)
  ?        toggle this help
  ctrl+l   clear activity

  ` + successStyle.Render("green") + `    finished
  ` + warningStyle.Render("orange") + `   throttled or empty profile
  ` + errorStyle.Render("red") + `      failed`

	return panelStyle.Width(width).Render(help)
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, min, s)
	}
	return fmt.Sprintf("%02d:%02d", min, s)
}
