package actor

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/huoshan017/gsgame/store"
)

const (
	DefaultInboxSize        = 128
	DefaultIdleTimeout      = 5 * time.Minute
	DefaultIdleScanInterval = 30 * time.Second
	DefaultRequestTimeout   = 5 * time.Second
)

type options struct {
	clock            clock.Clock
	store            store.Store
	inboxSize        int
	idleTimeout      time.Duration
	idleScanInterval time.Duration
	requestTimeout   time.Duration
}

type Option func(*options)

// WithClock 注入时钟，测试用mock时钟驱动定时器和空闲扫描
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithStore 持久化后端，不设置时actor状态读写会返回store.ErrUnavailable
func WithStore(s store.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

func WithInboxSize(n int) Option {
	return func(o *options) {
		o.inboxSize = n
	}
}

// WithIdleTimeout 默认空闲超时，可被kind级别的选项覆盖
func WithIdleTimeout(d time.Duration) Option {
	return func(o *options) {
		o.idleTimeout = d
	}
}

func WithIdleScanInterval(d time.Duration) Option {
	return func(o *options) {
		o.idleScanInterval = d
	}
}

func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		o.requestTimeout = d
	}
}

type kindOptions struct {
	reentrant   bool
	idleTimeout time.Duration
	inboxSize   int
}

type KindOption func(*kindOptions)

// Reentrant 标记该kind的激活实例允许在挂起点交错处理多个调用
// 交错只发生在Context.Request等待回应期间，永远不会真正并行
func Reentrant() KindOption {
	return func(o *kindOptions) {
		o.reentrant = true
	}
}

// WithKindIdleTimeout 0或负值表示该kind永不因空闲卸载
func WithKindIdleTimeout(d time.Duration) KindOption {
	return func(o *kindOptions) {
		o.idleTimeout = d
	}
}

func WithKindInboxSize(n int) KindOption {
	return func(o *kindOptions) {
		o.inboxSize = n
	}
}
