package fwdport

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrUnsupported is returned by LookupOwner on platforms without /proc
var ErrUnsupported = errors.New("port owner lookup not supported on this platform")

// ErrNotFound is returned when no process owning the port could be found
var ErrNotFound = errors.New("port owner not found")

// Owner identifies the process holding a port
type Owner struct {
	Name string `json:"name"`
	PID  int    `json:"pid"`
}

func (o Owner) String() string {
	return fmt.Sprintf("%s pid %d", o.Name, o.PID)
}

// IsAddrInUse reports whether err is a bind failure because the address
// is already taken.
func IsAddrInUse(err error) bool {
	return errors.Is(err, unix.EADDRINUSE)
}

// socketInodes returns the inodes of sockets bound to port in a
// /proc/net/{udp,udp6,tcp,tcp6} table.
func socketInodes(r io.Reader, port int) ([]string, error) {
	var inodes []string
	scanner := bufio.NewScanner(r)
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}
		local := fields[1]
		i := strings.LastIndexByte(local, ':')
		if i < 0 {
			continue
		}
		p, err := strconv.ParseUint(local[i+1:], 16, 16)
		if err != nil || int(p) != port {
			continue
		}
		if inode := fields[9]; inode != "0" {
			inodes = append(inodes, inode)
		}
	}
	return inodes, errors.Wrap(scanner.Err(), "reading socket table")
}
