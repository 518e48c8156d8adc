package fwdevent

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TimestampFormat selects how an event timestamp is displayed
type TimestampFormat int

const (
	TimestampLocal TimestampFormat = iota
	TimestampUTC
	TimestampEpoch
)

// LoggerFormat selects how a logger name is displayed
type LoggerFormat int

const (
	LoggerFull LoggerFormat = iota
	LoggerShort
)

// MessageFormat selects how an event message is displayed
type MessageFormat int

const (
	MessagePlain MessageFormat = iota
	MessageWithException
)

const displayTimeLayout = "2006-01-02 15:04:05.000"

var (
	timestampFormats = map[string]TimestampFormat{"local": TimestampLocal, "utc": TimestampUTC, "epoch": TimestampEpoch}
	loggerFormats    = map[string]LoggerFormat{"full": LoggerFull, "short": LoggerShort}
	messageFormats   = map[string]MessageFormat{"message": MessagePlain, "withexception": MessageWithException}
)

// ParseTimestampFormat parses local, utc or epoch. Empty means local.
func ParseTimestampFormat(s string) (TimestampFormat, error) {
	if strings.TrimSpace(s) == "" {
		return TimestampLocal, nil
	}
	f, ok := timestampFormats[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Errorf("unknown timestamp format %q", s)
	}
	return f, nil
}

// ParseLoggerFormat parses full or short. Empty means full.
func ParseLoggerFormat(s string) (LoggerFormat, error) {
	if strings.TrimSpace(s) == "" {
		return LoggerFull, nil
	}
	f, ok := loggerFormats[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Errorf("unknown logger format %q", s)
	}
	return f, nil
}

// ParseMessageFormat parses message or withException. Empty means message.
func ParseMessageFormat(s string) (MessageFormat, error) {
	if strings.TrimSpace(s) == "" {
		return MessagePlain, nil
	}
	f, ok := messageFormats[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, errors.Errorf("unknown message format %q", s)
	}
	return f, nil
}

// Resolver turns an event into its displayed columns.
// The zero value shows local time, the full logger and the bare message.
type Resolver struct {
	Timestamp TimestampFormat
	Logger    LoggerFormat
	Message   MessageFormat
}

// ID is the 1-based row number of the i-th event in a channel
func (r Resolver) ID(i int) string {
	return strconv.Itoa(i + 1)
}

// FormatTimestamp renders the event time
func (r Resolver) FormatTimestamp(ev *LogEvent) string {
	switch r.Timestamp {
	case TimestampUTC:
		return ev.Timestamp.UTC().Format(displayTimeLayout)
	case TimestampEpoch:
		return strconv.FormatInt(ev.Timestamp.UnixMilli(), 10)
	default:
		return ev.Timestamp.Local().Format(displayTimeLayout)
	}
}

// FormatLogger renders the logger name. Short keeps the last dotted segment.
func (r Resolver) FormatLogger(ev *LogEvent) string {
	if r.Logger == LoggerShort {
		if i := strings.LastIndexByte(ev.LoggerName, '.'); i >= 0 && i < len(ev.LoggerName)-1 {
			return ev.LoggerName[i+1:]
		}
	}
	return ev.LoggerName
}

// FormatMessage renders the message, optionally followed by exception text
func (r Resolver) FormatMessage(ev *LogEvent) string {
	if r.Message == MessageWithException && ev.HasException() {
		if ev.Message == "" {
			return ev.ExceptionText
		}
		return ev.Message + "\n" + ev.ExceptionText
	}
	return ev.Message
}
