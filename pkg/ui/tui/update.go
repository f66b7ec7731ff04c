package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"igreport/pkg/errors"
	"igreport/pkg/stats"
)

// ScanStartMsg is sent when a profile scan begins
type ScanStartMsg struct {
	Username string
	Limit    int
}

// PostProcessedMsg is sent after each post is folded in
type PostProcessedMsg struct {
	Username  string
	Processed int
	Limit     int
}

// PauseMsg is sent before each pause between posts
type PauseMsg struct {
	Delay time.Duration
}

// ScanFinishedMsg is sent when a scan ends
type ScanFinishedMsg struct {
	Username string
	Result   *stats.ProfileStats
	Err      error
}

// LogMsg adds a line to the activity panel
type LogMsg struct {
	Level   string
	Message string
}

// DoneMsg is sent when the caller's work has returned
type DoneMsg struct {
	Err error
}

// TickMsg refreshes countdowns
type TickMsg time.Time

// Update handles all messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(10, min(60, msg.Width-30))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.bar = bar
		}
		return m, cmd

	case TickMsg:
		if m.done {
			m.ticking = false
			return m, nil
		}
		return m, tickCmd()

	case ScanStartMsg:
		m.StartScan(msg.Username, msg.Limit)
		m.AddLogMessage("INFO", fmt.Sprintf("Scanning @%s (up to %d posts)", msg.Username, msg.Limit))
		if m.ticking {
			return m, nil
		}
		m.ticking = true
		return m, tickCmd()

	case PostProcessedMsg:
		m.UpdateProgress(msg.Username, msg.Processed, msg.Limit)
		return m, nil

	case PauseMsg:
		m.StartPause(msg.Delay)
		return m, nil

	case ScanFinishedMsg:
		m.FinishScan(msg.Username, msg.Result, msg.Err)
		switch {
		case msg.Err != nil:
			text := errors.Guidance(msg.Err)
			if text == "" {
				text = msg.Err.Error()
			}
			level := "ERROR"
			if errors.IsRemoteBlocked(msg.Err) {
				level = "WARN"
			}
			m.AddLogMessage(level, text)
		case msg.Result == nil:
			m.AddLogMessage("WARN", fmt.Sprintf("@%s has no posts", msg.Username))
		default:
			m.AddLogMessage("SUCCESS", fmt.Sprintf("Read %d posts from @%s", msg.Result.SampleSize, msg.Username))
		}
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil

	case DoneMsg:
		m.done = true
		if msg.Err != nil {
			m.AddLogMessage("ERROR", msg.Err.Error())
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
