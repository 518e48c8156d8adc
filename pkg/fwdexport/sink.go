package fwdexport

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sink stores one encoded export under name
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// FileSink writes exports into a local directory
type FileSink struct {
	Dir string
}

// Write creates Dir if needed and writes the file atomically
func (s FileSink) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", s.Dir)
	}

	target := filepath.Join(s.Dir, name)
	tmp, err := os.CreateTemp(s.Dir, "."+name+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", target)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", target)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), target), "renaming to %s", target)
}

// PutObjectAPI is the part of the S3 client used by S3Sink
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads exports to a bucket. Each attempt gets its own timeout
// and failed attempts back off from 200ms up to 2s.
type S3Sink struct {
	Client  PutObjectAPI
	Bucket  string
	Prefix  string
	Retries int
	Timeout time.Duration
}

// Key returns the object key for name
func (s S3Sink) Key(name string) string {
	prefix := strings.Trim(s.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Write uploads data with retries
func (s S3Sink) Write(ctx context.Context, name string, data []byte) error {
	retries := s.Retries
	if retries < 1 {
		retries = 1
	}
	key := s.Key(name)

	var lastErr error
	backoff := 200 * time.Millisecond

	for attempt := 1; attempt <= retries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := s.putObject(ctx, key, data)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warnf("S3 upload of s3://%s/%s failed (attempt %d/%d): %s", s.Bucket, key, attempt, retries, err)

		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > 2*time.Second {
				backoff = 2 * time.Second
			}
		}
	}

	return errors.Wrapf(lastErr, "uploading s3://%s/%s", s.Bucket, key)
}

func (s S3Sink) putObject(ctx context.Context, key string, data []byte) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.Bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(data),
		ContentLength:   aws.Int64(int64(len(data))),
		ContentType:     aws.String("application/x-ndjson"),
		ContentEncoding: aws.String("gzip"),
	})
	return err
}
