package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type countingResetter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingResetter) ResetExpiredQuotas(ctx context.Context, now time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1, c.err
}

func (c *countingResetter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestQuotaResetWorker_RunsUntilCancelled(t *testing.T) {
	resetter := &countingResetter{}
	w := NewQuotaResetWorker(resetter, 5*time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return resetter.count() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestQuotaResetWorker_ErrorsDoNotStopTheLoop(t *testing.T) {
	resetter := &countingResetter{err: errors.New("db down")}
	w := NewQuotaResetWorker(resetter, 5*time.Millisecond, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	assert.Eventually(t, func() bool { return resetter.count() >= 2 }, time.Second, time.Millisecond)
}

func TestQuotaResetWorker_DefaultInterval(t *testing.T) {
	w := NewQuotaResetWorker(&countingResetter{}, 0, quietLogger())

	assert.Equal(t, 5*time.Minute, w.tickInterval)
}
