package monitors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler()

	err := s.Run(context.Background(), "every now and then", "alert-summary", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestSchedulerStopsWhenContextEnds(t *testing.T) {
	s := NewScheduler()
	s.Logger = discardLogger
	s.StopTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- s.Run(ctx, "@every 1h", "alert-summary", func(context.Context) error { return nil })
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Len(t, s.Cron.Entries(), 1)
}
