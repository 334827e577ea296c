package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/config"
)

type fakeSweeper struct {
	calls chan struct{}
	reset int64
}

func (f *fakeSweeper) SweepExpiredStreaks() (int64, error) {
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	return f.reset, nil
}

func TestStreakSweepScheduler_StartStop(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewStreakSweepScheduler(sweeper, config.Maintenance{
		StreakSweepEnabled:  true,
		StreakSweepSchedule: "30 3 * * *",
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.NotNil(t, s.NextRunTime())

	// Starting twice is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())
}

func TestStreakSweepScheduler_DisabledDoesNotStart(t *testing.T) {
	s := NewStreakSweepScheduler(&fakeSweeper{}, config.Maintenance{
		StreakSweepEnabled: false,
	})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestStreakSweepScheduler_InvalidSchedule(t *testing.T) {
	s := NewStreakSweepScheduler(&fakeSweeper{}, config.Maintenance{
		StreakSweepEnabled:  true,
		StreakSweepSchedule: "not a schedule",
	})

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

func TestStreakSweepScheduler_RunNow(t *testing.T) {
	sweeper := &fakeSweeper{calls: make(chan struct{}, 1), reset: 2}
	s := NewStreakSweepScheduler(sweeper, config.Maintenance{
		StreakSweepEnabled:  true,
		StreakSweepSchedule: "30 3 * * *",
	})

	s.RunNow()

	select {
	case <-sweeper.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep was not triggered")
	}
}

func TestStreakSweepScheduler_ContextCancelStops(t *testing.T) {
	s := NewStreakSweepScheduler(&fakeSweeper{}, config.Maintenance{
		StreakSweepEnabled:  true,
		StreakSweepSchedule: "30 3 * * *",
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()

	// The stop goroutine runs asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.False(t, s.IsRunning())
}
