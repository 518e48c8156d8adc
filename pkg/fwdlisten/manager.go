package fwdlisten

import (
	"context"
	"net"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdport"
)

const (
	// MaxDatagramSize is the read buffer size; larger datagrams are truncated by the OS
	MaxDatagramSize = 64 * 1024

	defaultEventBuffer = 4096
)

// StartResult reports the outcome of StartListening
type StartResult struct {
	AnyStarted   bool   `json:"anyStarted"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// OwnerLookup finds the process holding a port
type OwnerLookup func(network string, port int) (fwdport.Owner, error)

// Manager owns the UDP sockets and merges their decoded events into a
// single stream.
type Manager struct {
	decoder *fwdevent.Decoder
	metrics *fwdmetrics.Registry
	events  chan fwdevent.Received
	lookup  OwnerLookup

	// lifecycle serializes StartListening and Stop
	lifecycle sync.Mutex

	mu     sync.Mutex
	conns  []net.PacketConn
	cancel context.CancelFunc
	loops  *sync.WaitGroup
}

// NewManager creates a manager publishing to a buffered event stream
func NewManager(decoder *fwdevent.Decoder, metrics *fwdmetrics.Registry) *Manager {
	if decoder == nil {
		decoder = fwdevent.NewDecoder()
	}
	if metrics == nil {
		metrics = fwdmetrics.NewRegistry()
	}
	return &Manager{
		decoder: decoder,
		metrics: metrics,
		events:  make(chan fwdevent.Received, defaultEventBuffer),
		lookup:  fwdport.LookupOwner,
	}
}

// SetOwnerLookup replaces the port owner lookup used in bind errors
func (m *Manager) SetOwnerLookup(fn OwnerLookup) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup = fn
}

// Events is the merged stream of every socket. It is never closed.
func (m *Manager) Events() <-chan fwdevent.Received {
	return m.events
}

// StartListening stops any running sockets and binds each address.
// Failures do not prevent the remaining addresses from binding; they are
// collected one per line in the result.
func (m *Manager) StartListening(addresses []string) StartResult {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	loops := &sync.WaitGroup{}

	var conns []net.PacketConn
	var failures []string
	for _, addr := range addresses {
		network, hostport, ok, err := ParseAddress(addr)
		if err != nil {
			failures = append(failures, err.Error())
			continue
		}
		if !ok {
			log.Debugf("Skipping non-UDP listener address %s", addr)
			continue
		}

		conn, err := net.ListenPacket(network, hostport)
		if err != nil {
			failures = append(failures, m.describeBindError(addr, network, hostport, err))
			continue
		}

		log.Infof("Listening on %s", conn.LocalAddr())
		conns = append(conns, conn)
		loops.Add(1)
		go func() {
			defer loops.Done()
			m.readLoop(ctx, conn)
		}()
	}

	m.mu.Lock()
	m.conns = conns
	m.cancel = cancel
	m.loops = loops
	m.mu.Unlock()

	return StartResult{
		AnyStarted:   len(conns) > 0,
		ErrorMessage: strings.Join(failures, "\n"),
	}
}

func (m *Manager) describeBindError(addr, network, hostport string, err error) string {
	msg := addr + ": " + err.Error()
	if !fwdport.IsAddrInUse(err) || m.lookup == nil {
		return msg
	}

	_, portStr, splitErr := net.SplitHostPort(hostport)
	if splitErr != nil {
		return msg
	}
	port, convErr := strconv.Atoi(portStr)
	if convErr != nil {
		return msg
	}

	owner, lookErr := m.lookup(network, port)
	if lookErr != nil {
		log.Debugf("Port owner lookup for %s failed: %v", addr, lookErr)
		return msg
	}
	return msg + " (in use by " + owner.String() + ")"
}

// Stop closes every socket and waits for the read loops to exit.
// It is safe to call when nothing is listening and more than once.
func (m *Manager) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	m.stopLocked()
}

// stopLocked tears down the current generation; callers hold lifecycle
func (m *Manager) stopLocked() {
	m.mu.Lock()
	cancel, conns, loops := m.cancel, m.conns, m.loops
	m.cancel, m.conns, m.loops = nil, nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, conn := range conns {
		if err := conn.Close(); err != nil {
			log.Debugf("Closing %s: %v", conn.LocalAddr(), err)
		}
	}
	if loops != nil {
		loops.Wait()
	}
}

// Addresses returns the local addresses currently bound
func (m *Manager) Addresses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.conns))
	for i, conn := range m.conns {
		out[i] = conn.LocalAddr().String()
	}
	return out
}
