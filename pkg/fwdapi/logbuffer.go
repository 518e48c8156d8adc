package fwdapi

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

const (
	// DefaultLogBufferSize is the number of self-log entries kept
	DefaultLogBufferSize = 1000
	maxLogBufferSize     = 10000
)

// LogBuffer keeps the newest entries of logfwd's own log so that
// /api/v1/logs/system can serve them. Entries are appended to a slice
// that is compacted back to limit whenever it doubles.
type LogBuffer struct {
	mu      sync.RWMutex
	limit   int
	entries []types.LogBufferEntry
}

// NewLogBuffer creates a buffer holding the last size entries. Sizes
// outside 1..10000 fall back to the default or are capped.
func NewLogBuffer(size int) *LogBuffer {
	switch {
	case size <= 0:
		size = DefaultLogBufferSize
	case size > maxLogBufferSize:
		size = maxLogBufferSize
	}
	return &LogBuffer{
		limit:   size,
		entries: make([]types.LogBufferEntry, 0, 2*size),
	}
}

// Add appends entry, forgetting the oldest beyond the limit
func (b *LogBuffer) Add(entry types.LogBufferEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 2*b.limit {
		n := copy(b.entries, b.entries[b.limit:])
		clear(b.entries[n:])
		b.entries = b.entries[:n]
	}
	b.entries = append(b.entries, entry)
}

// visible is the retained window of entries; callers hold the lock
func (b *LogBuffer) visible() []types.LogBufferEntry {
	if len(b.entries) > b.limit {
		return b.entries[len(b.entries)-b.limit:]
	}
	return b.entries
}

// Last returns up to n of the newest entries, oldest first
func (b *LogBuffer) Last(n int) []types.LogBufferEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v := b.visible()
	n = min(n, len(v))
	if n <= 0 {
		return nil
	}
	out := make([]types.LogBufferEntry, n)
	copy(out, v[len(v)-n:])
	return out
}

func (b *LogBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.visible())
}

func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.entries)
	b.entries = b.entries[:0]
}

var _ types.LogBufferProvider = (*LogBuffer)(nil)

// LogBufferHook is a logrus hook feeding a LogBuffer
type LogBufferHook struct {
	buffer *LogBuffer
	levels []log.Level
}

// NewLogBufferHook creates a hook for levels, or for every level when nil
func NewLogBufferHook(buffer *LogBuffer, levels []log.Level) *LogBufferHook {
	if levels == nil {
		levels = log.AllLevels
	}
	return &LogBufferHook{buffer: buffer, levels: levels}
}

func (h *LogBufferHook) Levels() []log.Level { return h.levels }

// Fire stores entry with its fields flattened to strings
func (h *LogBufferHook) Fire(entry *log.Entry) error {
	rec := types.LogBufferEntry{
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
		Message:   entry.Message,
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]string, len(entry.Data))
		for k, v := range entry.Data {
			rec.Fields[k] = fmt.Sprint(v)
		}
	}
	h.buffer.Add(rec)
	return nil
}
