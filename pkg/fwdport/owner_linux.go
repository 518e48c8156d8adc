//go:build linux

package fwdport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var procRoot = "/proc"

// LookupOwner finds the process holding a socket on port. network is
// "udp" or "tcp"; both the IPv4 and IPv6 tables are searched.
func LookupOwner(network string, port int) (Owner, error) {
	proto := strings.TrimRight(network, "46")
	if proto != "udp" && proto != "tcp" {
		return Owner{}, errors.Errorf("unsupported network %q", network)
	}

	wanted := make(map[string]bool)
	for _, table := range []string{proto, proto + "6"} {
		f, err := os.Open(filepath.Join(procRoot, "net", table))
		if err != nil {
			continue
		}
		inodes, err := socketInodes(f, port)
		_ = f.Close()
		if err != nil {
			return Owner{}, err
		}
		for _, in := range inodes {
			wanted["socket:["+in+"]"] = true
		}
	}
	if len(wanted) == 0 {
		return Owner{}, ErrNotFound
	}

	procs, err := os.ReadDir(procRoot)
	if err != nil {
		return Owner{}, errors.Wrap(err, "listing processes")
	}

	for _, p := range procs {
		pid, err := strconv.Atoi(p.Name())
		if err != nil || !p.IsDir() {
			continue
		}
		fdDir := filepath.Join(procRoot, p.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			// other users' processes are not readable
			continue
		}
		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil || !wanted[link] {
				continue
			}
			return Owner{Name: processName(pid), PID: pid}, nil
		}
	}

	return Owner{}, ErrNotFound
}

func processName(pid int) string {
	b, err := os.ReadFile(filepath.Join(procRoot, strconv.Itoa(pid), "comm"))
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(b))
}
