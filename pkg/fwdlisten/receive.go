package fwdlisten

import (
	"context"
	"errors"
	"net"
	"strings"

	log "github.com/sirupsen/logrus"
)

func (m *Manager) readLoop(ctx context.Context, conn net.PacketConn) {
	buf := make([]byte, MaxDatagramSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			m.metrics.IncReceiveErrors()
			log.Warnf("Receive error on %s: %v", conn.LocalAddr(), err)
			continue
		}

		m.metrics.AddDatagram(n)
		text := strings.ToValidUTF8(string(buf[:n]), "\uFFFD")

		rcv, err := m.decoder.Decode(text, from.String())
		if err != nil {
			m.metrics.IncParseFailures()
			log.Debugf("Dropping datagram from %s: %v", from, err)
			continue
		}

		select {
		case m.events <- rcv:
		case <-ctx.Done():
			return
		}
	}
}
