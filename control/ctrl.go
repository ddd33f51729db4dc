// Package control 监听socket选项控制，配合net.ListenConfig使用
package control

type CtrlOptions struct {
	ReuseAddr int
	ReusePort int
}
