package pacing

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformStrategyBounds(t *testing.T) {
	s := NewUniformStrategyWithSource(3*time.Second, 6*time.Second, rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		d := s.NextDelay()
		assert.GreaterOrEqual(t, d, 3*time.Second)
		assert.LessOrEqual(t, d, 6*time.Second)
	}
}

func TestUniformStrategySwappedBounds(t *testing.T) {
	s := NewUniformStrategyWithSource(6*time.Second, 3*time.Second, rand.NewSource(1))
	assert.Equal(t, 3*time.Second, s.Min)
	assert.Equal(t, 6*time.Second, s.Max)
}

func TestUniformStrategyDegenerate(t *testing.T) {
	s := NewUniformStrategyWithSource(2*time.Second, 2*time.Second, rand.NewSource(1))
	assert.Equal(t, 2*time.Second, s.NextDelay())
}

func TestConstantStrategy(t *testing.T) {
	s := ConstantStrategy{Delay: 3 * time.Second}
	assert.Equal(t, 3*time.Second, s.NextDelay())
}

func TestStrategyPacerUsesSleeperAndListener(t *testing.T) {
	var slept []time.Duration
	var announced []time.Duration

	p := NewFixed(3*time.Second,
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
		WithListener(func(d time.Duration) {
			announced = append(announced, d)
		}),
	)

	require.NoError(t, p.Wait(context.Background()))
	require.NoError(t, p.Wait(context.Background()))

	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, slept)
	assert.Equal(t, slept, announced)
}

func TestSleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Sleep(ctx, time.Hour)
	}()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Sleep did not return after cancellation")
	}
}

func TestSleepCompletes(t *testing.T) {
	start := time.Now()
	err := Sleep(context.Background(), 20*time.Millisecond)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestSleepZeroDelay(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, 0), context.Canceled)
}

func TestRandomPacerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Default()
	err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Noop{}.Wait(ctx), context.Canceled)
}

func TestPacerFunc(t *testing.T) {
	calls := 0
	var p Pacer = PacerFunc(func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, 1, calls)
}
