package fwdexport

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
)

const (
	DefaultRetries = 3
	DefaultTimeout = 5 * time.Second

	// Extension is appended to generated export names
	Extension = ".jsonl.gz"
)

// ErrNoEvents is returned when there is nothing to export
var ErrNoEvents = errors.New("no events to export")

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Options configures an Exporter
type Options struct {
	Region  string
	Retries int
	Timeout time.Duration

	// S3Client replaces the client built from the default AWS config
	S3Client PutObjectAPI
}

// Exporter encodes events and hands them to the sink selected by the
// destination string.
type Exporter struct {
	opts    Options
	counter uint64
	now     func() time.Time

	mu       sync.Mutex
	s3Client PutObjectAPI
}

// New creates an exporter
func New(opts Options) *Exporter {
	if opts.Retries < 1 {
		opts.Retries = DefaultRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Exporter{
		opts:     opts,
		now:      time.Now,
		s3Client: opts.S3Client,
	}
}

// SinkFor selects a sink for destination. It returns the sink and the
// file name given by the destination, if any.
//
//	s3://bucket/prefix/      upload under prefix
//	s3://bucket/key.jsonl.gz upload to key
//	file:///var/exports      write into a directory
//	./exports/out.jsonl.gz   write to a file
func (e *Exporter) SinkFor(ctx context.Context, destination string) (Sink, string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, "", errors.New("empty export destination")
	}

	if strings.HasPrefix(destination, "s3://") {
		u, err := url.Parse(destination)
		if err != nil {
			return nil, "", errors.Wrapf(err, "invalid destination %s", destination)
		}
		if u.Host == "" {
			return nil, "", errors.Errorf("destination %s has no bucket", destination)
		}
		client, err := e.client(ctx)
		if err != nil {
			return nil, "", err
		}

		prefix, name := splitName(strings.TrimPrefix(u.Path, "/"), "/")
		return S3Sink{
			Client:  client,
			Bucket:  u.Host,
			Prefix:  strings.Trim(prefix, "/"),
			Retries: e.opts.Retries,
			Timeout: e.opts.Timeout,
		}, name, nil
	}

	dir := strings.TrimPrefix(destination, "file://")
	dir, name := splitName(dir, string(filepath.Separator))
	if dir == "" {
		dir = "."
	}
	return FileSink{Dir: dir}, name, nil
}

// splitName separates an explicit .gz file name from its directory
func splitName(p, sep string) (dir, name string) {
	if !strings.HasSuffix(p, ".gz") {
		return p, ""
	}
	i := strings.LastIndex(p, sep)
	switch {
	case i < 0:
		return "", p
	case i == 0:
		return sep, p[1:]
	}
	return p[:i], p[i+1:]
}

func (e *Exporter) client(ctx context.Context) (PutObjectAPI, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.s3Client != nil {
		return e.s3Client, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if e.opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(e.opts.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS config")
	}

	// retries are handled by S3Sink
	e.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.RetryMaxAttempts = 1
	})
	return e.s3Client, nil
}

// FileName builds "<channel>_<unix>_<counter>.jsonl.gz"
func (e *Exporter) FileName(channel string) string {
	base := strings.Trim(unsafeName.ReplaceAllString(channel, "_"), "_")
	if base == "" {
		base = "logfwd"
	}
	n := atomic.AddUint64(&e.counter, 1) % 1_000_000
	return fmt.Sprintf("%s_%d_%06d%s", base, e.now().Unix(), n, Extension)
}

// Export writes events to destination and returns the compressed size
func (e *Exporter) Export(ctx context.Context, destination string, events []*fwdevent.LogEvent) (int, error) {
	return e.ExportChannel(ctx, "", destination, events)
}

// ExportChannel is Export with the channel name used for generated file names
func (e *Exporter) ExportChannel(ctx context.Context, channel, destination string, events []*fwdevent.LogEvent) (int, error) {
	if len(events) == 0 {
		return 0, ErrNoEvents
	}

	sink, name, err := e.SinkFor(ctx, destination)
	if err != nil {
		return 0, err
	}
	if name == "" {
		name = e.FileName(channel)
	}

	data, err := EncodeJSONLGZ(events)
	if err != nil {
		return 0, err
	}

	if err := sink.Write(ctx, name, data); err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"channel": channel,
		"events":  len(events),
		"bytes":   len(data),
	}).Infof("Exported %s to %s", name, destination)
	return len(data), nil
}
