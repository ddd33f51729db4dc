package actor

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/huoshan017/gsgame/store"
)

// Context 一次调用的上下文，在激活实例的goroutine里使用
// 不能超出Receive/OnActivate/OnDeactivate的调用范围持有
type Context struct {
	// Message 当前正被处理的消息
	Message any

	rt *Runtime
	a  *activation
}

func (c *Context) Ref() Ref {
	return c.a.ref
}

func (c *Context) Kind() string {
	return c.a.ref.Kind
}

func (c *Context) Id() string {
	return c.a.ref.Id
}

func (c *Context) IntId() int64 {
	return c.a.ref.IntId()
}

func (c *Context) Runtime() *Runtime {
	return c.rt
}

func (c *Context) Now() time.Time {
	return c.rt.clock.Now()
}

// Send 给另一个actor投递消息，不等待
func (c *Context) Send(ref Ref, m any) error {
	return c.rt.Send(ref, m)
}

// Request 调用另一个actor并等待回应
// 可重入kind在等待期间继续处理自己收件箱里的消息（挂起点交错），
// 不可重入kind阻塞等待，此时请求自己会直接报错避免死锁
func (c *Context) Request(ref Ref, m any) (any, error) {
	if !c.a.kind.reentrant && ref == c.a.ref {
		return nil, ErrSelfRequest
	}
	replyCh, err := c.rt.beginRequest(ref, m)
	if err != nil {
		return nil, err
	}

	timeout := c.rt.clock.After(c.rt.opts.requestTimeout)
	if !c.a.kind.reentrant {
		select {
		case res := <-replyCh:
			return res.val, res.err
		case <-timeout:
			return nil, ErrRequestTimeout
		case <-c.rt.done:
			return nil, ErrRuntimeClosed
		}
	}

	// 可重入: 等待期间继续抽自己的收件箱
	for {
		select {
		case res := <-replyCh:
			return res.val, res.err
		case env := <-c.a.inbox:
			c.a.handle(c, env)
		case <-timeout:
			return nil, ErrRequestTimeout
		case <-c.rt.done:
			return nil, ErrRuntimeClosed
		}
	}
}

// ReadState 从持久化存储加载本actor的状态，没有历史状态返回store.ErrNotFound
func (c *Context) ReadState(v any) error {
	if c.rt.store == nil {
		return store.ErrUnavailable
	}
	blob, err := c.rt.store.LoadState(c.a.ref.StateKey())
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(blob, v)
}

// WriteState 显式持久化状态检查点，调用方自行把相关修改攒成一次写入
func (c *Context) WriteState(v any) error {
	if c.rt.store == nil {
		return store.ErrUnavailable
	}
	blob, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return c.rt.store.SaveState(c.a.ref.StateKey(), blob)
}

// StartTimer 注册周期定时器，到期投递TimerTick{TimerId}到自己的收件箱
func (c *Context) StartTimer(period time.Duration) int64 {
	return c.a.startTimer(period)
}

func (c *Context) StopTimer(id int64) {
	c.a.stopTimer(id)
}

// DeactivateOnIdle 处理完当前消息后开始卸载
func (c *Context) DeactivateOnIdle() {
	c.a.beginStop()
}
