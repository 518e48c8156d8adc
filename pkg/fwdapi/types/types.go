package types

import "time"

// Response is the standard API response wrapper
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo provides error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo provides response metadata
type MetaInfo struct {
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// === Channel Types ===

// ChannelResponse represents a channel in API responses
type ChannelResponse struct {
	Key       string `json:"key"`
	App       string `json:"app"`
	Sender    string `json:"sender"`
	Count     int    `json:"count"`
	Total     int64  `json:"total"`
	MaxCount  int    `json:"maxCount"`
	Capacity  int    `json:"capacity"`
	Listeners int    `json:"subscribers"`
}

// ChannelListResponse contains every channel in creation order
type ChannelListResponse struct {
	Channels []ChannelResponse `json:"channels"`
}

// SegmentResponse is a piece of a highlighted message
type SegmentResponse struct {
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted,omitempty"`
}

// LocationResponse is the source location of an event
type LocationResponse struct {
	Class  string `json:"class,omitempty"`
	Method string `json:"method,omitempty"`
	File   string `json:"file,omitempty"`
	Line   string `json:"line,omitempty"`
}

// EventResponse represents a log event in API responses
type EventResponse struct {
	ID         string            `json:"id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Time       string            `json:"time"`
	Level      string            `json:"level"`
	Logger     string            `json:"logger"`
	Thread     string            `json:"thread,omitempty"`
	Message    string            `json:"message"`
	Exception  string            `json:"exception,omitempty"`
	Location   *LocationResponse `json:"location,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Segments   []SegmentResponse `json:"segments,omitempty"`
}

// EventsResponse is a filtered page of a channel's events
type EventsResponse struct {
	Channel  ChannelResponse `json:"channel"`
	Events   []EventResponse `json:"events"`
	Matching int             `json:"matching"`
	Hidden   []string        `json:"hiddenLevels,omitempty"`
	Terms    []string        `json:"terms,omitempty"`
}

// === Metrics Types ===

// RateSampleResponse is one point of the receive rate history
type RateSampleResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Datagrams uint64    `json:"datagrams"`
	Bytes     uint64    `json:"bytes"`
}

// MetricsResponse provides pipeline counters
type MetricsResponse struct {
	DatagramsReceived uint64               `json:"datagramsReceived"`
	BytesReceived     uint64               `json:"bytesReceived"`
	ParseFailures     uint64               `json:"parseFailures"`
	ReceiveErrors     uint64               `json:"receiveErrors"`
	EventsDispatched  uint64               `json:"eventsDispatched"`
	WindowsFlushed    uint64               `json:"windowsFlushed"`
	ChannelsCreated   uint64               `json:"channelsCreated"`
	DatagramsPerSec   float64              `json:"datagramsPerSec"`
	BytesPerSec       float64              `json:"bytesPerSec"`
	Uptime            string               `json:"uptime"`
	History           []RateSampleResponse `json:"history,omitempty"`
}

// === Log Types ===

// LogEntryResponse represents one of logfwd's own log entries
type LogEntryResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// LogsResponse contains a list of log entries
type LogsResponse struct {
	Logs []LogEntryResponse `json:"logs"`
}

// === Listener Types ===

// ListenersResponse lists the bound UDP addresses
type ListenersResponse struct {
	Addresses []string `json:"addresses"`
}

// ListenRequest replaces the listener set
type ListenRequest struct {
	Addresses []string `json:"addresses" binding:"required"`
}

// StartResultResponse reports the outcome of a listener restart
type StartResultResponse struct {
	AnyStarted   bool     `json:"anyStarted"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	Addresses    []string `json:"addresses"`
}

// === Export Types ===

// ExportRequest asks for a channel's replay cache to be written out
type ExportRequest struct {
	Destination string `json:"destination" binding:"required"`
}

// ExportResponse reports a finished export
type ExportResponse struct {
	Channel     string `json:"channel"`
	Destination string `json:"destination"`
	Events      int    `json:"events"`
	Bytes       int    `json:"bytes"`
}

// === Health Types ===

// HealthResponse provides health status
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// InfoResponse provides detailed runtime information
type InfoResponse struct {
	Version    string    `json:"version"`
	GoVersion  string    `json:"goVersion"`
	Platform   string    `json:"platform"`
	StartTime  time.Time `json:"startTime"`
	Uptime     string    `json:"uptime"`
	Listeners  []string  `json:"listeners"`
	TUIEnabled bool      `json:"tuiEnabled"`
	APIEnabled bool      `json:"apiEnabled"`
}

// === Log Buffer Types ===

// LogBufferEntry is a captured logrus entry
type LogBufferEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
	Fields    map[string]string
}
