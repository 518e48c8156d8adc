package fwdapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/txn2/logfwd/pkg/fwdapi/types"
	"github.com/txn2/logfwd/pkg/fwdcache"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdview"
)

const testKey = "Billing;app01@10.0.0.5:51000"

func newTestLoop(t *testing.T, messages ...string) *fwdview.Loop {
	t.Helper()
	loop := fwdview.NewLoop(fwdview.NewState(), 0)
	loop.Start()
	t.Cleanup(loop.Stop)

	loop.Do(func(s *fwdview.State) {
		ch := s.Ensure(testKey, "Billing", "app01@10.0.0.5:51000", 1000)
		for _, msg := range messages {
			ch.Append(&fwdevent.LogEvent{Level: fwdevent.LevelInfo, LoggerName: "com.acme.Billing", Message: msg})
		}
	})
	return loop
}

func TestNewManagerDefaults(t *testing.T) {
	m := NewManager("", "0.3.0")
	if m.Addr() != DefaultAddr {
		t.Errorf("Expected default addr %s, got %s", DefaultAddr, m.Addr())
	}
	if m.Version() != "0.3.0" {
		t.Errorf("Unexpected version %s", m.Version())
	}
	if m.TUIEnabled() {
		t.Error("Expected TUI disabled by default")
	}
	m.SetTUIEnabled(true)
	if !m.TUIEnabled() {
		t.Error("Expected TUI enabled after SetTUIEnabled")
	}
	if m.StartTime().IsZero() || m.Uptime() < 0 {
		t.Error("Expected start time to be set")
	}
}

func TestManagerRunRequiresChannels(t *testing.T) {
	m := NewManager("127.0.0.1:0", "test")
	if err := m.Run(); err == nil {
		t.Error("Expected error without a channel reader")
	}
	select {
	case <-m.Done():
	default:
		t.Error("Expected Done to be closed after Run returns")
	}
}

func TestManagerRunAndStop(t *testing.T) {
	m := NewManager("127.0.0.1:0", "test")
	m.SetChannelReader(NewChannelReaderAdapter(newTestLoop(t, "hello")))

	errCh := make(chan error, 1)
	go func() { errCh <- m.Run() }()

	select {
	case <-m.Ready():
	case err := <-errCh:
		t.Fatalf("Run failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for API server")
	}

	resp, err := http.Get("http://" + m.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("Health request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	m.Stop()
	m.Stop()

	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for shutdown")
	}
	if err := <-errCh; err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}

func TestManagerRoutes(t *testing.T) {
	loop := newTestLoop(t, "one", "two", "three")
	replay := fwdcache.NewRegistry[*fwdevent.LogEvent]()
	replay.GetOrCreate(testKey, 10)

	logs := NewLogBuffer(10)
	logs.Add(types.LogBufferEntry{Level: "info", Message: "started"})

	m := NewManager("127.0.0.1:0", "test")
	m.SetChannelReader(NewChannelReaderAdapter(loop))
	m.SetReplaySource(replay)
	m.SetMetricsProvider(fwdmetrics.NewRegistry())
	m.SetLogBuffer(logs)
	h := m.Handler()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusFound},
		{http.MethodGet, "/docs", http.StatusOK},
		{http.MethodGet, "/openapi.yaml", http.StatusOK},
		{http.MethodGet, "/api/health", http.StatusOK},
		{http.MethodGet, "/api/info", http.StatusOK},
		{http.MethodGet, "/api/v1/channels", http.StatusOK},
		{http.MethodGet, "/api/v1/channels/" + url.PathEscape(testKey) + "/events", http.StatusOK},
		{http.MethodGet, "/api/v1/channels/unknown/events", http.StatusNotFound},
		{http.MethodGet, "/api/v1/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/logs/system", http.StatusOK},
		{http.MethodGet, "/api/v1/listeners", http.StatusServiceUnavailable},
		{http.MethodPost, "/api/v1/channels/" + url.PathEscape(testKey) + "/export", http.StatusServiceUnavailable},
		{http.MethodOptions, "/api/v1/channels", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestManagerEventsThroughLoop(t *testing.T) {
	m := NewManager("", "test")
	m.SetChannelReader(NewChannelReaderAdapter(newTestLoop(t, "one", "two", "three")))
	h := m.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/"+url.PathEscape(testKey)+"/events?count=2", http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp struct {
		Data types.EventsResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp.Data.Matching != 3 || len(resp.Data.Events) != 2 {
		t.Fatalf("Expected 2 of 3 events, got %d of %d", len(resp.Data.Events), resp.Data.Matching)
	}
	if resp.Data.Events[0].Message != "two" || resp.Data.Events[1].Message != "three" {
		t.Errorf("Unexpected events %+v", resp.Data.Events)
	}
	if resp.Data.Channel.Key != testKey || resp.Data.Channel.Total != 3 {
		t.Errorf("Unexpected channel %+v", resp.Data.Channel)
	}
}

func TestChannelReaderAdapterCopies(t *testing.T) {
	loop := newTestLoop(t, "one")
	a := NewChannelReaderAdapter(loop)

	_, events, ok := a.Events(testKey)
	if !ok || len(events) != 1 {
		t.Fatalf("Expected one event, got %d (%v)", len(events), ok)
	}

	loop.Do(func(s *fwdview.State) {
		s.Channel(testKey).Clear()
	})
	if events[0] == nil || events[0].Message != "one" {
		t.Error("Expected returned slice to survive channel changes")
	}

	infos := a.Channels()
	if len(infos) != 1 || infos[0].Count != 0 {
		t.Errorf("Unexpected infos %+v", infos)
	}
	if _, _, ok := a.Events("Other;x@y"); ok {
		t.Error("Expected unknown channel to be reported missing")
	}
}

func TestChannelReaderAdapterStoppedLoop(t *testing.T) {
	loop := fwdview.NewLoop(fwdview.NewState(), 0)
	loop.Start()
	loop.Stop()

	a := NewChannelReaderAdapter(loop)
	if infos := a.Channels(); len(infos) != 0 {
		t.Errorf("Expected no channels from a stopped loop, got %v", infos)
	}
}
