package fwdapi

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
	"github.com/txn2/logfwd/pkg/fwdevent"
)

// DefaultAddr is where the API listens unless configured otherwise
const DefaultAddr = "127.0.0.1:7070"

// Manager manages the API server lifecycle
type Manager struct {
	addr      string
	server    *http.Server
	router    *gin.Engine
	stopChan  chan struct{}
	doneChan  chan struct{}
	readyChan chan struct{}
	stopOnce  sync.Once
	startTime time.Time
	boundAddr string
	mu        sync.RWMutex

	// Dependencies (interfaces for testability)
	channels  types.ChannelReader
	replay    types.ReplaySource
	metrics   types.MetricsProvider
	listeners types.ListenerController
	exporter  types.Exporter
	logBuffer types.LogBufferProvider
	resolver  fwdevent.Resolver

	// Configuration
	version    string
	tuiEnabled bool
}

// NewManager creates an API manager for addr
func NewManager(addr, version string) *Manager {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Manager{
		addr:      addr,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
		readyChan: make(chan struct{}),
		startTime: time.Now(),
		version:   version,
	}
}

// SetChannelReader sets the display state reader
func (m *Manager) SetChannelReader(reader types.ChannelReader) {
	m.channels = reader
}

// SetReplaySource sets the replay cache registry
func (m *Manager) SetReplaySource(replay types.ReplaySource) {
	m.replay = replay
}

// SetMetricsProvider sets the metrics provider dependency
func (m *Manager) SetMetricsProvider(provider types.MetricsProvider) {
	m.metrics = provider
}

// SetListenerController sets the UDP listener controller
func (m *Manager) SetListenerController(listeners types.ListenerController) {
	m.listeners = listeners
}

// SetExporter sets the channel exporter
func (m *Manager) SetExporter(exporter types.Exporter) {
	m.exporter = exporter
}

// SetLogBuffer sets the buffer served at /api/v1/logs/system
func (m *Manager) SetLogBuffer(buffer types.LogBufferProvider) {
	m.logBuffer = buffer
}

// SetResolver sets how event fields are rendered
func (m *Manager) SetResolver(resolver fwdevent.Resolver) {
	m.resolver = resolver
}

// SetTUIEnabled sets whether the TUI is also running (for info endpoint)
func (m *Manager) SetTUIEnabled(enabled bool) {
	m.tuiEnabled = enabled
}

// Handler builds the router without starting a server
func (m *Manager) Handler() http.Handler {
	if m.router == nil {
		m.router = m.routes()
	}
	return m.router
}

// Run starts the API server and blocks until Stop is called or the
// server fails.
func (m *Manager) Run() error {
	defer close(m.doneChan)

	if m.channels == nil {
		return errors.New("channel reader not configured")
	}

	gin.SetMode(gin.ReleaseMode)

	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		return errors.Wrapf(err, "API listen on %s", m.addr)
	}

	m.server = &http.Server{
		Handler:      m.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // the stream endpoint is long-lived
		IdleTimeout:  120 * time.Second,
	}

	m.mu.Lock()
	m.boundAddr = ln.Addr().String()
	m.mu.Unlock()
	close(m.readyChan)

	log.Infof("API listening on http://%s/api  Docs: http://%s/docs", m.boundAddr, m.boundAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-m.stopChan:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.server.Shutdown(ctx); err != nil {
			log.Errorf("API server shutdown error: %v", err)
		}
	case err := <-errCh:
		return err
	}

	return nil
}

// Stop stops the API server
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// Ready closes once the server is listening
func (m *Manager) Ready() <-chan struct{} {
	return m.readyChan
}

// Addr returns the bound address once Ready is closed
func (m *Manager) Addr() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.boundAddr != "" {
		return m.boundAddr
	}
	return m.addr
}

// Done returns a channel that closes when Run returns
func (m *Manager) Done() <-chan struct{} {
	return m.doneChan
}

// Uptime returns the server uptime
func (m *Manager) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// StartTime returns when the manager was created
func (m *Manager) StartTime() time.Time {
	return m.startTime
}

// Version returns the configured version
func (m *Manager) Version() string {
	return m.version
}

// TUIEnabled returns whether TUI is also enabled
func (m *Manager) TUIEnabled() bool {
	return m.tuiEnabled
}

var _ types.ManagerInfo = (*Manager)(nil)
