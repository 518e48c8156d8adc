package fwdexport

import (
	"bytes"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/txn2/logfwd/pkg/fwdevent"
)

// maxPooledBuffer is the largest buffer returned to the pool
const maxPooledBuffer = 1 << 20

var (
	bufferPool = sync.Pool{
		New: func() any { return bytes.NewBuffer(make([]byte, 0, 256*1024)) },
	}
	gzipPool = sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
			return w
		},
	}
)

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxPooledBuffer {
		buf.Reset()
		bufferPool.Put(buf)
	}
}

// Record is one exported line
type Record struct {
	Timestamp  time.Time              `json:"timestamp"`
	Level      string                 `json:"level"`
	Logger     string                 `json:"logger"`
	Thread     string                 `json:"thread,omitempty"`
	Message    string                 `json:"message"`
	Exception  string                 `json:"exception,omitempty"`
	Location   *fwdevent.LocationInfo `json:"location,omitempty"`
	Properties []fwdevent.Property    `json:"properties,omitempty"`
}

// NewRecord converts an event to its export form
func NewRecord(ev *fwdevent.LogEvent) Record {
	r := Record{
		Timestamp: ev.Timestamp,
		Level:     ev.Level.String(),
		Logger:    ev.LoggerName,
		Thread:    ev.Thread,
		Message:   ev.Message,
		Exception: ev.ExceptionText,
		Location:  ev.Location,
	}
	if ev.Properties.Len() > 0 {
		r.Properties = ev.Properties.List()
	}
	return r
}

// EncodeJSONLGZ writes one JSON record per line and gzips the result.
// The returned slice is owned by the caller.
func EncodeJSONLGZ(events []*fwdevent.LogEvent) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()

	gz := gzipPool.Get().(*gzip.Writer)
	gz.Reset(buf)

	enc := json.NewEncoder(gz)
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if err := enc.Encode(NewRecord(ev)); err != nil {
			_ = gz.Close()
			gzipPool.Put(gz)
			putBuffer(buf)
			return nil, errors.Wrap(err, "encoding event")
		}
	}

	if err := gz.Close(); err != nil {
		gzipPool.Put(gz)
		putBuffer(buf)
		return nil, errors.Wrap(err, "closing gzip stream")
	}
	gzipPool.Put(gz)

	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())
	putBuffer(buf)

	return data, nil
}
