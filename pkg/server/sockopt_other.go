//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package server

import "syscall"

// controlReuse is a no-op where SO_REUSEPORT is not available.
func controlReuse(network, address string, c syscall.RawConn) error {
	return nil
}
