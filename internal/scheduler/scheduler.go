// Package scheduler repeats a pipeline run on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then once per interval until ctx is done.
// Runs never overlap: a tick that arrives while a run is in progress is
// dropped. Task errors are logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, log zerolog.Logger, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	runs := 0
	run := func() {
		runs++
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Error().Err(err).Str("task", name).Int("run", runs).Msg("scheduled run failed")
			return
		}
		log.Info().Str("task", name).Int("run", runs).Dur("took", time.Since(start)).Msg("scheduled run ok")
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if ctx.Err() != nil {
				return
			}
			run()
		}
	}
}
