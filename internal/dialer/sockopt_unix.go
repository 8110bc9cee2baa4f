//go:build unix

package dialer

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func (c *SocketConfig) control() func(network, address string, rc syscall.RawConn) error {
	if c == nil || (c.ReadBuffer <= 0 && c.WriteBuffer <= 0) {
		return nil
	}
	return func(network, address string, rc syscall.RawConn) error {
		var serr error
		err := rc.Control(func(fd uintptr) {
			if c.ReadBuffer > 0 {
				serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, c.ReadBuffer)
			}
			if serr == nil && c.WriteBuffer > 0 {
				serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, c.WriteBuffer)
			}
		})
		if err != nil {
			return err
		}
		return serr
	}
}
