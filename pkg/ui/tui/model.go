package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"igreport/pkg/stats"
)

// ScanState is where a scan is in its lifecycle
type ScanState int

const (
	ScanActive ScanState = iota
	ScanCompleted
	ScanEmpty
	ScanFailed
)

// ScanItem is one profile being scanned
type ScanItem struct {
	Username  string
	Limit     int
	Processed int
	State     ScanState
	Result    *stats.ProfileStats
	Err       error
	StartTime time.Time
	EndTime   time.Time
}

// LogMessage is an entry in the activity panel
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the bubbletea model for scan progress. Update and View run on
// the program goroutine, so it needs no locking.
type Model struct {
	spinner spinner.Model
	bar     progress.Model

	scans     []*ScanItem
	byName    map[string]*ScanItem
	pause     time.Duration
	pauseEnds time.Time
	pauses    time.Duration
	pauseN    int

	sessionStart   time.Time
	width          int
	height         int
	showHelp       bool
	done           bool
	ticking        bool
	logMessages    []LogMessage
	maxLogMessages int
	now            func() time.Time
}

// NewModel creates an empty model
func NewModel() *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return &Model{
		spinner:        s,
		bar:            bar,
		byName:         make(map[string]*ScanItem),
		sessionStart:   time.Now(),
		maxLogMessages: 50,
		now:            time.Now,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// StartScan adds a scan, or restarts one with the same username
func (m *Model) StartScan(username string, limit int) {
	item := &ScanItem{
		Username:  username,
		Limit:     limit,
		State:     ScanActive,
		StartTime: m.now(),
	}
	if _, ok := m.byName[username]; !ok {
		m.scans = append(m.scans, item)
	} else {
		for i, s := range m.scans {
			if s.Username == username {
				m.scans[i] = item
			}
		}
	}
	m.byName[username] = item
	m.pause = 0
}

// UpdateProgress records a processed post
func (m *Model) UpdateProgress(username string, processed, limit int) {
	if item, ok := m.byName[username]; ok {
		item.Processed = processed
		item.Limit = limit
	}
	m.pause = 0
}

// StartPause records a pause before the next post
func (m *Model) StartPause(delay time.Duration) {
	m.pause = delay
	m.pauseEnds = m.now().Add(delay)
	m.pauses += delay
	m.pauseN++
}

// FinishScan records the outcome of a scan
func (m *Model) FinishScan(username string, result *stats.ProfileStats, err error) {
	item, ok := m.byName[username]
	if !ok {
		return
	}
	item.EndTime = m.now()
	item.Result = result
	item.Err = err
	m.pause = 0

	switch {
	case err != nil:
		item.State = ScanFailed
	case result == nil:
		item.State = ScanEmpty
	default:
		item.State = ScanCompleted
		item.Processed = result.SampleSize
	}
}

// AddLogMessage appends to the activity panel
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    m.now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Scans returns the scans in start order
func (m *Model) Scans() []*ScanItem {
	return m.scans
}

// Active returns the scan currently running, or nil
func (m *Model) Active() *ScanItem {
	for i := len(m.scans) - 1; i >= 0; i-- {
		if m.scans[i].State == ScanActive {
			return m.scans[i]
		}
	}
	return nil
}

// PauseRemaining is how long the current pause still lasts
func (m *Model) PauseRemaining() time.Duration {
	if m.pause == 0 {
		return 0
	}
	return max(0, m.pauseEnds.Sub(m.now()))
}

// AveragePause is the mean pause between posts so far
func (m *Model) AveragePause() time.Duration {
	if m.pauseN == 0 {
		return 0
	}
	return m.pauses / time.Duration(m.pauseN)
}

// Done reports whether all work has finished
func (m *Model) Done() bool {
	return m.done
}
