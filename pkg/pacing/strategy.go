package pacing

import (
	"math/rand"
	"sync"
	"time"
)

// Strategy decides how long the next pause lasts
type Strategy interface {
	// NextDelay returns the next delay duration
	NextDelay() time.Duration
}

// UniformStrategy draws delays uniformly from [Min, Max]
type UniformStrategy struct {
	// Min is the shortest pause
	Min time.Duration
	// Max is the longest pause
	Max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniformStrategy creates a uniform strategy seeded from the clock
func NewUniformStrategy(min, max time.Duration) *UniformStrategy {
	return NewUniformStrategyWithSource(min, max, rand.NewSource(time.Now().UnixNano()))
}

// NewUniformStrategyWithSource creates a uniform strategy with a caller-supplied source
func NewUniformStrategyWithSource(min, max time.Duration, src rand.Source) *UniformStrategy {
	if max < min {
		min, max = max, min
	}
	return &UniformStrategy{
		Min: min,
		Max: max,
		rng: rand.New(src),
	}
}

// NextDelay returns a delay in [Min, Max]
func (u *UniformStrategy) NextDelay() time.Duration {
	if u.Max <= u.Min {
		return u.Min
	}

	u.mu.Lock()
	f := u.rng.Float64()
	u.mu.Unlock()

	span := float64(u.Max - u.Min)
	return u.Min + time.Duration(f*span)
}

// ConstantStrategy always returns the same delay
type ConstantStrategy struct {
	Delay time.Duration
}

// NextDelay returns the fixed delay
func (c ConstantStrategy) NextDelay() time.Duration {
	return c.Delay
}
