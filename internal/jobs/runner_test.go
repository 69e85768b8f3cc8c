package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Spok95/gradebook-bot/internal/metrics"
)

func TestEveryRunsUntilCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n atomic.Int32
	New(ctx).Every(5*time.Millisecond, "test_tick", func(context.Context) error {
		n.Add(1)
		return nil
	})

	deadline := time.Now().Add(time.Second)
	for n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	cancel()
	if n.Load() < 3 {
		t.Fatalf("job ran %d times, want >= 3", n.Load())
	}
	time.Sleep(20 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	if n.Load() != stopped {
		t.Fatalf("job still running after cancel")
	}
}

func TestRunCountsErrorsAndPanics(t *testing.T) {
	r := New(context.Background())

	r.run("test_err", func(context.Context) error { return errors.New("boom") })
	if got := testutil.ToFloat64(metrics.JobErrors.WithLabelValues("test_err")); got != 1 {
		t.Fatalf("errors = %v, want 1", got)
	}

	r.run("test_panic", func(context.Context) error { panic("oops") })
	if got := testutil.ToFloat64(metrics.JobErrors.WithLabelValues("test_panic")); got != 1 {
		t.Fatalf("panic errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.JobRuns.WithLabelValues("test_panic")); got != 1 {
		t.Fatalf("runs = %v, want 1", got)
	}

	r.run("test_ok", func(context.Context) error { return nil })
	if got := testutil.ToFloat64(metrics.JobErrors.WithLabelValues("test_ok")); got != 0 {
		t.Fatalf("ok errors = %v, want 0", got)
	}
	if got := testutil.ToFloat64(metrics.JobRuns.WithLabelValues("test_ok")); got != 1 {
		t.Fatalf("ok runs = %v, want 1", got)
	}
}
