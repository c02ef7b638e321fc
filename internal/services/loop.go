package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// loop runs a tick function on a ticker until stopped. The first tick
// happens immediately on start.
type loop struct {
	name string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func (l *loop) start(ctx context.Context, interval time.Duration, tick func(context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("%s: interval must be positive, got %v", l.name, interval)
	}
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return fmt.Errorf("%s is already running", l.name)
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	stopCh, doneCh := l.stopCh, l.doneCh
	l.mu.Unlock()

	go func() {
		defer close(doneCh)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		tick(ctx)
		for {
			select {
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()

	slog.InfoContext(ctx, "Loop started", "name", l.name, "interval", interval)
	return nil
}

// stop signals the loop and waits for the current tick to finish.
func (l *loop) stop(ctx context.Context) error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	stopCh, doneCh := l.stopCh, l.doneCh
	l.running = false
	l.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Loop stopped gracefully", "name", l.name)
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Loop stop timed out", "name", l.name)
		return ctx.Err()
	}
}

func (l *loop) isRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
