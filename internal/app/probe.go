package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/gradebook-bot/internal/jobs"
	"github.com/Spok95/gradebook-bot/internal/metrics"
)

// StartBackendProbe периодически проверяет REST API и выставляет gradebook_backend_up.
func StartBackendProbe(r *jobs.Runner, every time.Duration, dep Pinger, log *zap.Logger) {
	r.Every(every, "backend_probe", func(ctx context.Context) error {
		return ProbeBackend(ctx, dep, log)
	})
}

func ProbeBackend(ctx context.Context, dep Pinger, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := dep.Ping(ctx)
	metrics.SetBackendUp(err == nil)
	if err != nil {
		log.Warn("backend probe failed", zap.Error(err))
	}
	return err
}
