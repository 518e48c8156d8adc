package fwdlisten

import (
	"net"
	"strings"

	"github.com/pkg/errors"
)

// ParseAddress splits "udp://host:port". ok is false for any scheme other
// than udp, udp4 or udp6; err is set when the udp address is malformed.
func ParseAddress(s string) (network, hostport string, ok bool, err error) {
	s = strings.TrimSpace(s)
	scheme, rest, found := strings.Cut(s, "://")
	if !found {
		return "", "", false, errors.Errorf("%s: missing scheme, want udp://host:port", s)
	}

	network = strings.ToLower(scheme)
	switch network {
	case "udp", "udp4", "udp6":
	default:
		return "", "", false, nil
	}

	rest = strings.TrimSuffix(rest, "/")
	if _, _, err := net.SplitHostPort(rest); err != nil {
		return "", "", true, errors.Wrapf(err, "%s: invalid address", s)
	}
	return network, rest, true, nil
}
