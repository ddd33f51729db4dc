//go:build linux || darwin

package control

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func GetControl(options CtrlOptions) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) (err error) {
		e := c.Control(func(fd uintptr) {
			if options.ReuseAddr != 0 {
				if err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, options.ReuseAddr); err != nil {
					return
				}
			}
			if options.ReusePort != 0 {
				err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, options.ReusePort)
			}
		})
		if e != nil {
			return e
		}
		return
	}
}
