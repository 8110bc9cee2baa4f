//go:build !unix

package dialer

import "syscall"

// socket buffer sizes are only applied on unix
func (c *SocketConfig) control() func(network, address string, rc syscall.RawConn) error {
	return nil
}
