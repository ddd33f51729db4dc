package control

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func GetControl(options CtrlOptions) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) (err error) {
		e := c.Control(func(fd uintptr) {
			if options.ReuseAddr != 0 {
				// windows下没有SO_REUSEPORT，只设置SO_REUSEADDR
				err = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, options.ReuseAddr)
			}
		})
		if e != nil {
			return e
		}
		return
	}
}
