package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestGoroutineLoggerIncludesCounters(t *testing.T) {
	var out syncBuffer
	logger := slog.New(slog.NewJSONHandler(&out, nil))
	var c Counters
	c.Set(12, 40, 3, true)
	stop := make(chan struct{})
	StartGoroutineLogger(10*time.Millisecond, logger, &c, stop)
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), `"boxes":40`) {
		if time.Now().After(deadline) {
			close(stop)
			t.Fatalf("counters never logged: %s", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(stop)
	if !strings.Contains(out.String(), `"undo_depth":3`) || !strings.Contains(out.String(), `"scanning":true`) {
		t.Fatalf("missing counters in %s", out.String())
	}
}

func TestNilCountersAttrs(t *testing.T) {
	var c *Counters
	c.Set(1, 1, 1, false)
	if c.Attrs() != nil {
		t.Fatalf("nil counters must yield no attrs")
	}
}
