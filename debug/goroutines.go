package debug

// Debug loggers started only when config.Debug is true. They emit goroutine
// and memory figures next to the editor counters at a fixed interval.

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"sync/atomic"
	"time"
)

// Counters are editor figures published by the UI tick and read by the
// debug loggers. The zero value is usable.
type Counters struct {
	images    atomic.Int64
	boxes     atomic.Int64
	undoDepth atomic.Int64
	scanning  atomic.Bool
}

// Set publishes the current figures.
func (c *Counters) Set(images, boxes, undoDepth int, scanning bool) {
	if c == nil {
		return
	}
	c.images.Store(int64(images))
	c.boxes.Store(int64(boxes))
	c.undoDepth.Store(int64(undoDepth))
	c.scanning.Store(scanning)
}

// Attrs returns the counters as log attributes.
func (c *Counters) Attrs() []any {
	if c == nil {
		return nil
	}
	return []any{
		slog.Int64("images", c.images.Load()),
		slog.Int64("boxes", c.boxes.Load()),
		slog.Int64("undo_depth", c.undoDepth.Load()),
		slog.Bool("scanning", c.scanning.Load()),
	}
}

// StartGoroutineLogger launches a ticker that logs goroutine count, stack
// memory and the editor counters until stop is closed.
func StartGoroutineLogger(interval time.Duration, logger *slog.Logger, c *Counters, stop <-chan struct{}) {
	if interval <= 0 {
		interval = time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-stop:
				return
			case <-t.C:
			}
			metrics.Read(samples)
			goroutines := samples[0].Value.Uint64()
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []any{
				slog.Uint64("goroutines", goroutines),
				slog.Uint64("stack_inuse", ms.StackInuse),
				slog.Uint64("stack_sys", ms.StackSys),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
			}
			logger.Info("goroutine-stacks", append(attrs, c.Attrs()...)...)
		}
	}()
}
