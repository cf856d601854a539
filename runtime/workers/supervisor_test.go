package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type panickyWorker struct {
	runs *atomic.Int32
}

func (w panickyWorker) Run(ctx context.Context) error {
	if w.runs.Add(1) == 1 {
		panic("boom")
	}
	<-ctx.Done()
	return nil
}

func TestSupervisor_Restarts_A_Panicking_Worker(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.DiscardHandler)

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32

	sup := NewSupervisor(log)
	sup.Add(panickyWorker{runs: &runs})

	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	// Given the first run panics, the worker is restarted after the delay
	req.Eventually(func() bool { return runs.Load() >= 2 },
		2*time.Second, 10*time.Millisecond)

	// When the parent context is canceled, Run returns
	cancel()
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("supervisor did not stop")
	}
}

func TestSupervisor_Stop_Cancels_Its_Workers(t *testing.T) {
	req := require.New(t)
	log := slog.New(slog.DiscardHandler)

	started := make(chan struct{})
	sup := NewSupervisor(log)
	sup.Add(workerFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return nil
	}))

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	<-started
	sup.Stop()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("supervisor did not release its workers")
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }
