//go:build !linux

package fwdport

// LookupOwner is only implemented on Linux
func LookupOwner(network string, port int) (Owner, error) {
	return Owner{}, ErrUnsupported
}
