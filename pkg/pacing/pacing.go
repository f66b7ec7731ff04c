package pacing

import (
	"context"
	"time"

	"igreport/pkg/logger"
)

const (
	// DefaultMinDelay is the shortest pause between two posts
	DefaultMinDelay = 3 * time.Second
	// DefaultMaxDelay is the longest pause between two posts
	DefaultMaxDelay = 6 * time.Second
	// DefaultCompetitorDelay is the pause between a self scan and a competitor scan
	DefaultCompetitorDelay = 3 * time.Second
)

// Pacer suspends the caller between remote reads
type Pacer interface {
	// Wait blocks for the next delay or until ctx is done
	Wait(ctx context.Context) error
}

// PacerFunc adapts a function to the Pacer interface
type PacerFunc func(ctx context.Context) error

// Wait calls f(ctx)
func (f PacerFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// Listener is notified before each pause
type Listener func(delay time.Duration)

// StrategyPacer waits for whatever its strategy returns
type StrategyPacer struct {
	strategy Strategy
	sleep    func(ctx context.Context, d time.Duration) error
	logger   logger.Logger
	listener Listener
}

// Option configures a StrategyPacer
type Option func(*StrategyPacer)

// WithLogger sets the logger used to report pauses
func WithLogger(log logger.Logger) Option {
	return func(p *StrategyPacer) {
		p.logger = log
	}
}

// WithListener registers a callback invoked before each pause
func WithListener(l Listener) Option {
	return func(p *StrategyPacer) {
		p.listener = l
	}
}

// WithSleeper replaces the timer-based sleep
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *StrategyPacer) {
		p.sleep = sleep
	}
}

// New creates a pacer driven by strategy
func New(strategy Strategy, opts ...Option) *StrategyPacer {
	p := &StrategyPacer{
		strategy: strategy,
		sleep:    Sleep,
		logger:   logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewRandom creates a pacer with uniform delays in [min, max]
func NewRandom(min, max time.Duration, opts ...Option) *StrategyPacer {
	return New(NewUniformStrategy(min, max), opts...)
}

// NewFixed creates a pacer that always waits delay
func NewFixed(delay time.Duration, opts ...Option) *StrategyPacer {
	return New(ConstantStrategy{Delay: delay}, opts...)
}

// Default returns the 3-6 second post pacer
func Default(opts ...Option) *StrategyPacer {
	return NewRandom(DefaultMinDelay, DefaultMaxDelay, opts...)
}

// Wait pauses for the next strategy delay
func (p *StrategyPacer) Wait(ctx context.Context) error {
	delay := p.strategy.NextDelay()

	if p.listener != nil {
		p.listener(delay)
	}

	logger.LogPacing(p.logger, delay)

	return p.sleep(ctx, delay)
}

// Sleep waits for delay or until ctx is done
func Sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Noop never waits
type Noop struct{}

// Wait returns immediately unless ctx is already done
func (Noop) Wait(ctx context.Context) error {
	return ctx.Err()
}
