package cart

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSweeper struct {
	swept   atomic.Int64
	counted atomic.Int64
}

func (f *fakeSweeper) CancelExpiredCartItems(_ context.Context, _ time.Time) (int64, error) {
	f.swept.Add(1)
	return 1, nil
}

func (f *fakeSweeper) CountAllActiveCartItems(_ context.Context, _ time.Time) (int64, error) {
	f.counted.Add(1)
	return 3, nil
}

func TestJanitorSweepsAndStopsOnCancel(t *testing.T) {
	f := &fakeSweeper{}
	j := NewJanitor(f)
	j.SweepEvery = 5 * time.Millisecond
	j.RefreshEvery = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return f.swept.Load() >= 2 && f.counted.Load() >= 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop on context cancel")
	}
}
