package actor

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/store"
)

type kindDesc struct {
	name        string
	factory     BehaviorFactory
	kindOptions
}

// activationGate 同一个键并发首次调用时去重，只有一个goroutine真正创建激活实例
type activationGate struct {
	done  chan struct{}
	actor *activation
	err   error
}

// Runtime 虚拟actor运行时，单机实现
// 单写者保证: 键到激活实例的进程内映射，同一个键出现第二个实例之前
// 旧实例必定已经走完卸载流程
type Runtime struct {
	opts   options
	clock  clock.Clock
	store  store.Store
	kinds  map[string]*kindDesc

	mu     sync.RWMutex
	actors map[Ref]*activation

	activating sync.Map // Ref -> *activationGate

	done    chan struct{}
	closed  int32
	wg      sync.WaitGroup
	scanWg  sync.WaitGroup
}

func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		kinds:  make(map[string]*kindDesc),
		actors: make(map[Ref]*activation),
		done:   make(chan struct{}),
	}
	rt.opts = options{
		inboxSize:        DefaultInboxSize,
		idleTimeout:      DefaultIdleTimeout,
		idleScanInterval: DefaultIdleScanInterval,
		requestTimeout:   DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&rt.opts)
	}
	if rt.opts.clock == nil {
		rt.opts.clock = clock.New()
	}
	rt.clock = rt.opts.clock
	rt.store = rt.opts.store

	rt.scanWg.Add(1)
	go rt.idleScanLoop()
	return rt
}

// Store 持久化后端，未配置时返回nil
func (rt *Runtime) Store() store.Store {
	return rt.store
}

// RegisterKind 注册actor kind，需要在第一次调用该kind之前完成
func (rt *Runtime) RegisterKind(name string, factory BehaviorFactory, opts ...KindOption) {
	ko := kindOptions{
		idleTimeout: rt.opts.idleTimeout,
		inboxSize:   rt.opts.inboxSize,
	}
	for _, opt := range opts {
		opt(&ko)
	}
	if ko.inboxSize <= 0 {
		ko.inboxSize = DefaultInboxSize
	}
	rt.mu.Lock()
	rt.kinds[name] = &kindDesc{name: name, factory: factory, kindOptions: ko}
	rt.mu.Unlock()
}

func (rt *Runtime) getKind(name string) *kindDesc {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.kinds[name]
}

// Send 投递一条消息，不等待处理结果，behavior返回的错误只记录日志
func (rt *Runtime) Send(ref Ref, m any) error {
	for {
		a, err := rt.getOrActivate(ref)
		if err != nil {
			return err
		}
		err = a.enqueue(envelope{msg: m})
		if err == errDeactivating {
			<-a.unloaded
			continue
		}
		return err
	}
}

// Request 投递一条消息并等待回应
func (rt *Runtime) Request(ref Ref, m any) (any, error) {
	replyCh, err := rt.beginRequest(ref, m)
	if err != nil {
		return nil, err
	}
	select {
	case res := <-replyCh:
		return res.val, res.err
	case <-rt.clock.After(rt.opts.requestTimeout):
		return nil, ErrRequestTimeout
	case <-rt.done:
		return nil, ErrRuntimeClosed
	}
}

func (rt *Runtime) beginRequest(ref Ref, m any) (chan invokeResult, error) {
	replyCh := make(chan invokeResult, 1)
	for {
		a, err := rt.getOrActivate(ref)
		if err != nil {
			return nil, err
		}
		err = a.enqueue(envelope{msg: m, replyCh: replyCh})
		if err == errDeactivating {
			<-a.unloaded
			continue
		}
		if err != nil {
			return nil, err
		}
		return replyCh, nil
	}
}

func (rt *Runtime) getOrActivate(ref Ref) (*activation, error) {
	for {
		if atomic.LoadInt32(&rt.closed) != 0 {
			return nil, ErrRuntimeClosed
		}

		rt.mu.RLock()
		a := rt.actors[ref]
		rt.mu.RUnlock()
		if a != nil {
			if a.getStatus() >= statusDeactivating {
				<-a.unloaded
				continue
			}
			return a, nil
		}

		gate := &activationGate{done: make(chan struct{})}
		if existing, loaded := rt.activating.LoadOrStore(ref, gate); loaded {
			g := existing.(*activationGate)
			<-g.done
			if g.err != nil {
				return nil, g.err
			}
			continue
		}

		a = rt.createActivation(ref, gate)
		if gate.err != nil {
			return nil, gate.err
		}
		return a, nil
	}
}

func (rt *Runtime) createActivation(ref Ref, gate *activationGate) *activation {
	defer func() {
		close(gate.done)
		rt.activating.Delete(ref)
	}()

	// double-check: 等待gate期间可能已被其他goroutine创建
	rt.mu.RLock()
	if a := rt.actors[ref]; a != nil {
		rt.mu.RUnlock()
		gate.actor = a
		return a
	}
	rt.mu.RUnlock()

	kind := rt.getKind(ref.Kind)
	if kind == nil {
		gate.err = ErrKindNotRegistered
		return nil
	}

	a := newActivation(rt, ref, kind)
	rt.mu.Lock()
	rt.actors[ref] = a
	rt.mu.Unlock()

	rt.wg.Add(1)
	go a.run()

	gate.actor = a
	return a
}

func (rt *Runtime) removeActivation(ref Ref, a *activation) {
	rt.mu.Lock()
	if rt.actors[ref] == a {
		delete(rt.actors, ref)
	}
	rt.mu.Unlock()
}

// Deactivate 主动卸载一个激活实例，不存在时是no-op
func (rt *Runtime) Deactivate(ref Ref) {
	rt.mu.RLock()
	a := rt.actors[ref]
	rt.mu.RUnlock()
	if a != nil {
		a.beginStop()
	}
}

// ActivationCount 当前活动实例数
func (rt *Runtime) ActivationCount() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.actors)
}

func (rt *Runtime) idleScanLoop() {
	defer rt.scanWg.Done()
	ticker := rt.clock.Ticker(rt.opts.idleScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rt.done:
			return
		case <-ticker.C:
			rt.scanIdle()
		}
	}
}

func (rt *Runtime) scanIdle() {
	now := rt.clock.Now()
	rt.mu.RLock()
	var idle []*activation
	for _, a := range rt.actors {
		if a.kind.idleTimeout <= 0 {
			continue
		}
		if a.getStatus() == statusActive && now.Sub(a.lastMessageTime()) > a.kind.idleTimeout {
			idle = append(idle, a)
		}
	}
	rt.mu.RUnlock()

	for _, a := range idle {
		gsgame.GetLogger().Infof("actor %v idle, deactivating", a.ref)
		a.beginStop()
	}
}

// Stop 停止运行时，等待所有激活实例卸载完成
func (rt *Runtime) Stop() {
	if !atomic.CompareAndSwapInt32(&rt.closed, 0, 1) {
		return
	}
	close(rt.done)

	rt.mu.RLock()
	actors := make([]*activation, 0, len(rt.actors))
	for _, a := range rt.actors {
		actors = append(actors, a)
	}
	rt.mu.RUnlock()
	for _, a := range actors {
		a.beginStop()
	}

	rt.wg.Wait()
	rt.scanWg.Wait()
}
