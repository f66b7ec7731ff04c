package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"igreport/pkg/logger"
	"igreport/pkg/stats"
)

// Options configures the TUI program
type Options struct {
	AltScreen bool
	Output    io.Writer
	Input     io.Reader
}

// TUI runs the scan dashboard and forwards scan events to it
type TUI struct {
	program *tea.Program
	model   *Model
	opts    Options
}

// New creates a TUI. The program is built in Run so it can share the
// caller's context.
func New(opts Options) *TUI {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	return &TUI{model: NewModel(), opts: opts}
}

// Model returns the underlying model
func (t *TUI) Model() *Model {
	return t.model
}

// Run starts the dashboard and calls work in the background. The
// dashboard closes once work returns, or work is cancelled if the user
// quits first.
func (t *TUI) Run(ctx context.Context, work func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	popts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithOutput(t.opts.Output),
	}
	if t.opts.Input != nil {
		popts = append(popts, tea.WithInput(t.opts.Input))
	}
	if t.opts.AltScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	t.program = tea.NewProgram(t.model, popts...)

	errc := make(chan error, 1)
	go func() {
		err := work(ctx)
		errc <- err
		t.program.Send(DoneMsg{Err: err})
	}()

	logger.LogComponentStart("dashboard", map[string]interface{}{"alt_screen": t.opts.AltScreen})
	_, runErr := t.program.Run()
	cancel()
	err := <-errc

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && err == nil {
		err = fmt.Errorf("dashboard: %w", runErr)
	}
	if err != nil {
		logger.LogComponentStop("dashboard", err.Error())
		return err
	}
	logger.LogComponentStop("dashboard", "scan finished")
	return nil
}

// Send forwards a message to the running program
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) ScanStarted(username string, limit int) {
	t.Send(ScanStartMsg{Username: username, Limit: limit})
}

func (t *TUI) PostProcessed(username string, processed, limit int) {
	t.Send(PostProcessedMsg{Username: username, Processed: processed, Limit: limit})
}

func (t *TUI) ScanFinished(username string, result *stats.ProfileStats, err error) {
	t.Send(ScanFinishedMsg{Username: username, Result: result, Err: err})
}

func (t *TUI) Pausing(delay time.Duration) {
	t.Send(PauseMsg{Delay: delay})
}

// Log adds a line to the activity panel
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}
