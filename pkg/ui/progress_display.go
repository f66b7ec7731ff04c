package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"igreport/pkg/errors"
	"igreport/pkg/pacing"
	"igreport/pkg/stats"
)

// ScanView follows scans and the pauses between posts.
// ProgressDisplay and the bubbletea TUI both implement it.
type ScanView interface {
	ScanStarted(username string, limit int)
	PostProcessed(username string, processed, limit int)
	ScanFinished(username string, result *stats.ProfileStats, err error)
	Pausing(delay time.Duration)
}

// Listener adapts a ScanView to a pacing listener
func Listener(v ScanView) pacing.Listener {
	return v.Pausing
}

// ProgressDisplay prints a single updating progress line per scan
type ProgressDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	username  string
	limit     int
	processed int
	pausing   time.Duration
	startTime time.Time
	pauses    time.Duration
	verbose   bool
	now       func() time.Time
}

// NewProgressDisplay creates a display writing to out.
// Verbose prints one line per post instead of redrawing.
func NewProgressDisplay(out io.Writer, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:     out,
		verbose: verbose,
		now:     time.Now,
	}
}

func (p *ProgressDisplay) ScanStarted(username string, limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.username = username
	p.limit = limit
	p.processed = 0
	p.pausing = 0
	p.pauses = 0
	p.startTime = p.now()

	fmt.Fprintf(p.out, "%s Scanning @%s (up to %d posts)\n", Magenta("→"), username, limit)
}

func (p *ProgressDisplay) PostProcessed(username string, processed, limit int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processed = processed
	p.pausing = 0

	if p.verbose {
		fmt.Fprintf(p.out, "  %s post %d/%d\n", Green("✓"), processed, limit)
		return
	}
	p.printProgress()
}

// Pausing is called before each pause between posts
func (p *ProgressDisplay) Pausing(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pausing = delay
	p.pauses += delay

	if !p.verbose {
		p.printProgress()
	}
}

func (p *ProgressDisplay) ScanFinished(username string, result *stats.ProfileStats, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.startTime)
	if !p.verbose && p.limit > 0 {
		fmt.Fprintln(p.out)
	}

	switch {
	case err != nil:
		fmt.Fprintf(p.out, "%s @%s: %s\n", Red("✗"), username, describeFailure(err))
	case result == nil:
		fmt.Fprintf(p.out, "%s @%s has no posts\n", Yellow("!"), username)
	default:
		fmt.Fprintf(p.out, "%s Read %d posts from @%s in %s\n", Green("✓"), result.SampleSize, username, FormatDuration(elapsed))
	}
}

// Line returns the current progress line without printing it
func (p *ProgressDisplay) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *ProgressDisplay) line() string {
	parts := []string{
		fmt.Sprintf("%s [%s] %d/%d", Cyan("@"+p.username), Bar(p.processed, p.limit, 20), p.processed, p.limit),
	}
	if p.pausing > 0 {
		parts = append(parts, fmt.Sprintf("pausing %.1fs", p.pausing.Seconds()))
	}
	if p.processed > 1 {
		avg := p.pauses / time.Duration(p.processed-1)
		parts = append(parts, "~"+FormatDuration(EstimateRemaining(p.processed, p.limit, avg))+" left")
	}
	return strings.Join(parts, " • ")
}

func (p *ProgressDisplay) printProgress() {
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 80), p.line())
}

func describeFailure(err error) string {
	if g := errors.Guidance(err); g != "" {
		return g
	}
	return err.Error()
}
