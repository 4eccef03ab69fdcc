//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package server

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuse sets SO_REUSEADDR and SO_REUSEPORT on the listening socket
// before bind.
func controlReuse(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
			opErr = &sockoptError{option: "SO_REUSEADDR", err: err}
			return
		}
		if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
			opErr = &sockoptError{option: "SO_REUSEPORT", err: err}
		}
	})
	if err != nil {
		return &sockoptError{option: "control", err: err}
	}
	return opErr
}
