// Package scheduler runs background engine tasks on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on each tick until ctx is done.
// Runs never overlap; a slow run delays the next one.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	run := func() {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			log.Printf("level=warn msg=\"task failed\" task=%s err=%q", name, err.Error())
		}
	}

	run()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
