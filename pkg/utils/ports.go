package utils

import (
	"net"
	"strconv"
)

// PrivilegedPort is the first port that binds without superuser privileges
const PrivilegedPort = 1024

// PrivilegedAddresses returns the host:port values whose port is below
// PrivilegedPort. Port 0 asks the OS for a free port and is never privileged.
func PrivilegedAddresses(hostports []string) []string {
	var out []string
	for _, hp := range hostports {
		_, portStr, err := net.SplitHostPort(hp)
		if err != nil {
			continue
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port >= PrivilegedPort {
			continue
		}
		out = append(out, hp)
	}
	return out
}
