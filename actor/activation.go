package actor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gsgame "github.com/huoshan017/gsgame"
)

// 激活状态机: Unloaded -> Activating -> Active -> Deactivating -> Unloaded
const (
	statusActivating int32 = iota
	statusActive
	statusDeactivating
	statusUnloaded
)

type invokeResult struct {
	val any
	err error
}

type envelope struct {
	msg     any
	replyCh chan invokeResult // nil表示fire-and-forget
}

// stopMsg 内部哨兵消息，通知激活实例进入卸载流程
type stopMsg struct{}

type timerEntry struct {
	stopCh chan struct{}
}

// activation 一个actor键的活动执行上下文
// 收件箱里的消息被run goroutine逐条串行处理
type activation struct {
	rt       *Runtime
	ref      Ref
	kind     *kindDesc
	behavior Behavior
	inbox    chan envelope
	unloaded chan struct{}

	mu     sync.RWMutex
	closed bool

	status      int32
	lastMessage int64 // unixnano，运行时时钟

	// 以下字段只被run goroutine访问
	timers        map[int64]*timerEntry
	timerSeq      int64
	stopRequested bool
}

func newActivation(rt *Runtime, ref Ref, kind *kindDesc) *activation {
	return &activation{
		rt:       rt,
		ref:      ref,
		kind:     kind,
		behavior: kind.factory(),
		inbox:    make(chan envelope, kind.inboxSize),
		unloaded: make(chan struct{}),
		timers:   make(map[int64]*timerEntry),
	}
}

func (a *activation) getStatus() int32 {
	return atomic.LoadInt32(&a.status)
}

func (a *activation) lastMessageTime() time.Time {
	return time.Unix(0, atomic.LoadInt64(&a.lastMessage))
}

// enqueue 投递一条消息，关闭后返回errDeactivating让调用方等待卸载完成后重试
func (a *activation) enqueue(env envelope) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errDeactivating
	}
	select {
	case a.inbox <- env:
		return nil
	default:
		return ErrInboxFull
	}
}

func (a *activation) run() {
	defer a.rt.wg.Done()

	log := gsgame.GetLogger()
	ctx := &Context{rt: a.rt, a: a}

	atomic.StoreInt64(&a.lastMessage, a.rt.clock.Now().UnixNano())

	// Activating: 加载持久化状态
	if act, o := a.behavior.(Activator); o {
		if err := act.OnActivate(ctx); err != nil {
			log.Errorf("actor %v activate failed: %v", a.ref, err)
			a.abort()
			return
		}
	}
	atomic.StoreInt32(&a.status, statusActive)
	log.Debugf("actor %v activated", a.ref)

	for !a.stopRequested {
		select {
		case env := <-a.inbox:
			a.handle(ctx, env)
		case <-a.rt.done:
			a.stopRequested = true
		}
	}

	a.shutdown(ctx)
}

func (a *activation) handle(ctx *Context, env envelope) {
	if _, o := env.msg.(stopMsg); o {
		a.stopRequested = true
		return
	}
	atomic.StoreInt64(&a.lastMessage, a.rt.clock.Now().UnixNano())

	// 重入时嵌套handle会复用同一个Context，恢复现场
	prev := ctx.Message
	ctx.Message = env.msg
	val, err := a.invoke(ctx)
	ctx.Message = prev

	if env.replyCh != nil {
		env.replyCh <- invokeResult{val: val, err: err}
	} else if err != nil {
		gsgame.GetLogger().Errorf("actor %v receive error: %v", a.ref, err)
	}
}

func (a *activation) invoke(ctx *Context) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, o := r.(error); o {
				err = e
			} else {
				err = fmt.Errorf("gsgame: actor %v panic: %v", a.ref, r)
			}
		}
	}()
	return a.behavior.Receive(ctx)
}

// beginStop 请求卸载，幂等。已接收的消息仍会处理完
func (a *activation) beginStop() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	a.mu.Unlock()

	// 收件箱可能是满的，异步投递避免阻塞扫描goroutine
	go func() {
		select {
		case a.inbox <- envelope{msg: stopMsg{}}:
		case <-a.unloaded:
		}
	}()
}

// shutdown 卸载流程: 处理完已接收的消息、取消定时器、OnDeactivate、从表中移除
func (a *activation) shutdown(ctx *Context) {
	atomic.StoreInt32(&a.status, statusDeactivating)
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	for {
		select {
		case env := <-a.inbox:
			a.handle(ctx, env)
		default:
			goto drained
		}
	}
drained:

	a.cancelAllTimers()
	if d, o := a.behavior.(Deactivator); o {
		d.OnDeactivate(ctx)
	}

	atomic.StoreInt32(&a.status, statusUnloaded)
	a.rt.removeActivation(a.ref, a)
	close(a.unloaded)
	gsgame.GetLogger().Debugf("actor %v unloaded", a.ref)
}

// abort OnActivate失败时的卸载，队列里等待的调用都拿到激活失败错误
func (a *activation) abort() {
	atomic.StoreInt32(&a.status, statusDeactivating)
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	for {
		select {
		case env := <-a.inbox:
			if env.replyCh != nil {
				env.replyCh <- invokeResult{err: ErrActivateFailed}
			}
		default:
			atomic.StoreInt32(&a.status, statusUnloaded)
			a.rt.removeActivation(a.ref, a)
			close(a.unloaded)
			return
		}
	}
}

// startTimer 注册周期定时器，触发消息走收件箱，和其他调用串行
// 只能在Receive/OnActivate里调用
func (a *activation) startTimer(period time.Duration) int64 {
	a.timerSeq++
	id := a.timerSeq
	entry := &timerEntry{stopCh: make(chan struct{})}
	a.timers[id] = entry

	ticker := a.rt.clock.Ticker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if a.enqueue(envelope{msg: TimerTick{TimerId: id}}) == errDeactivating {
					return
				}
			case <-entry.stopCh:
				return
			}
		}
	}()
	return id
}

func (a *activation) stopTimer(id int64) {
	entry, o := a.timers[id]
	if !o {
		return
	}
	close(entry.stopCh)
	delete(a.timers, id)
}

func (a *activation) cancelAllTimers() {
	for id, entry := range a.timers {
		close(entry.stopCh)
		delete(a.timers, id)
	}
}
