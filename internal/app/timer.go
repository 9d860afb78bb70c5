package app

import (
	"context"
	"time"
)

// countdown calls tick once per interval until stopped.
type countdown struct {
	cancel context.CancelFunc
}

func startCountdown(interval time.Duration, tick func()) *countdown {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
	return &countdown{cancel: cancel}
}

// Stop is idempotent and safe to call from inside tick.
func (c *countdown) Stop() {
	if c != nil {
		c.cancel()
	}
}
