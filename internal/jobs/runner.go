package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Spok95/gradebook-bot/internal/metrics"
	"github.com/Spok95/gradebook-bot/internal/observability"
)

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
}

func New(ctx context.Context) *Runner { return &Runner{ctx: ctx} }

// Every запускает fn раз в interval до отмены контекста раннера.
// Первый запуск сразу, чтобы метрики не ждали целый интервал.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		r.run(name, fn)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.run(name, fn)
			}
		}
	}()
}

func (r *Runner) run(name string, fn Job) {
	start := time.Now()
	var failed bool
	defer func() {
		if rec := recover(); rec != nil {
			failed = true
			observability.CaptureErr(fmt.Errorf("panic in job %s: %v", name, rec))
		}
		metrics.ObserveJob(name, time.Since(start), failed)
	}()
	failed = fn(r.ctx) != nil
}
