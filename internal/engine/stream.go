package engine

import (
	"context"
	"time"

	"github.com/Dicklesworthstone/host_telemetry_engine/internal/model"
	"github.com/Dicklesworthstone/host_telemetry_engine/internal/procs"
)

// Stream polls the engine off the caller's goroutine and delivers one
// Sample per interval until ctx is done. Event-loop UIs consume this
// channel instead of calling the blocking reads on their render path.
func (e *Engine) Stream(ctx context.Context, interval time.Duration, sortBy procs.SortKey, limit int) <-chan model.Sample {
	ch := make(chan model.Sample)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer close(ch)
		for {
			select {
			case <-ticker.C:
				select {
				case ch <- e.Snapshot(interval, sortBy, limit):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}
