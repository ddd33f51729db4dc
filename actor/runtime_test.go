package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterBehavior 非原子计数器，靠单写者保证正确性
type counterBehavior struct {
	count int
}

type incrMsg struct{}
type getMsg struct{}

func (b *counterBehavior) Receive(ctx *Context) (any, error) {
	switch ctx.Message.(type) {
	case incrMsg:
		b.count++
		return nil, nil
	case getMsg:
		return b.count, nil
	}
	return nil, nil
}

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	rt := NewRuntime(opts...)
	t.Cleanup(rt.Stop)
	return rt
}

func TestRequestReply(t *testing.T) {
	rt := newTestRuntime(t)
	rt.RegisterKind("counter", func() Behavior { return &counterBehavior{} })

	ref := NewRef("counter", "a")
	_, err := rt.Request(ref, incrMsg{})
	require.NoError(t, err)

	res, err := rt.Request(ref, getMsg{})
	require.NoError(t, err)
	assert.Equal(t, 1, res)
}

func TestKindNotRegistered(t *testing.T) {
	rt := newTestRuntime(t)
	_, err := rt.Request(NewRef("unknown", "x"), getMsg{})
	assert.ErrorIs(t, err, ErrKindNotRegistered)
	assert.ErrorIs(t, rt.Send(NewRef("unknown", "x"), incrMsg{}), ErrKindNotRegistered)
}

// 并发调用同一个键，处理必须串行，非原子计数不会丢更新
func TestSingleWriterSerialization(t *testing.T) {
	rt := newTestRuntime(t)
	rt.RegisterKind("counter", func() Behavior { return &counterBehavior{} })

	ref := NewRef("counter", "serial")
	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rt.Request(ref, incrMsg{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	res, err := rt.Request(ref, getMsg{})
	require.NoError(t, err)
	assert.Equal(t, n, res)
}

// 并发首次调用同一个键只激活一个实例
func TestActivationDedup(t *testing.T) {
	var mu sync.Mutex
	created := 0

	rt := newTestRuntime(t)
	rt.RegisterKind("counter", func() Behavior {
		mu.Lock()
		created++
		mu.Unlock()
		return &counterBehavior{}
	})

	ref := NewRef("counter", "dedup")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := rt.Request(ref, getMsg{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, rt.ActivationCount())
}

// 不同键互不影响，各自有独立状态
func TestPerKeyIsolation(t *testing.T) {
	rt := newTestRuntime(t)
	rt.RegisterKind("counter", func() Behavior { return &counterBehavior{} })

	for i := 0; i < 3; i++ {
		_, err := rt.Request(NewRef("counter", "a"), incrMsg{})
		require.NoError(t, err)
	}
	_, err := rt.Request(NewRef("counter", "b"), incrMsg{})
	require.NoError(t, err)

	resA, err := rt.Request(NewRef("counter", "a"), getMsg{})
	require.NoError(t, err)
	resB, err := rt.Request(NewRef("counter", "b"), getMsg{})
	require.NoError(t, err)
	assert.Equal(t, 3, resA)
	assert.Equal(t, 1, resB)
	assert.Equal(t, 2, rt.ActivationCount())
}

type lifecycleBehavior struct {
	mu          *sync.Mutex
	activated   *int
	deactivated *int
}

func (b *lifecycleBehavior) OnActivate(ctx *Context) error {
	b.mu.Lock()
	*b.activated++
	b.mu.Unlock()
	return nil
}

func (b *lifecycleBehavior) OnDeactivate(ctx *Context) {
	b.mu.Lock()
	*b.deactivated++
	b.mu.Unlock()
}

func (b *lifecycleBehavior) Receive(ctx *Context) (any, error) {
	return "ok", nil
}

// 空闲超时后自动卸载，再次调用重新激活
func TestIdleDeactivation(t *testing.T) {
	mock := clock.NewMock()
	var mu sync.Mutex
	activated, deactivated := 0, 0

	rt := newTestRuntime(t,
		WithClock(mock),
		WithIdleTimeout(time.Minute),
		WithIdleScanInterval(10*time.Second),
	)
	rt.RegisterKind("life", func() Behavior {
		return &lifecycleBehavior{mu: &mu, activated: &activated, deactivated: &deactivated}
	})

	ref := NewRef("life", "1")
	_, err := rt.Request(ref, getMsg{})
	require.NoError(t, err)
	require.Equal(t, 1, rt.ActivationCount())

	// 推进时钟越过空闲阈值，扫描触发卸载
	for i := 0; i < 8; i++ {
		mock.Add(10 * time.Second)
	}
	require.Eventually(t, func() bool {
		return rt.ActivationCount() == 0
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1, activated)
	assert.Equal(t, 1, deactivated)
	mu.Unlock()

	// 再调用会重新激活
	_, err = rt.Request(ref, getMsg{})
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, 2, activated)
	mu.Unlock()
}

// kind空闲超时为0表示永不因空闲卸载
func TestNeverIdleKind(t *testing.T) {
	mock := clock.NewMock()
	rt := newTestRuntime(t,
		WithClock(mock),
		WithIdleTimeout(time.Minute),
		WithIdleScanInterval(10*time.Second),
	)
	rt.RegisterKind("pinned", func() Behavior { return &counterBehavior{} },
		WithKindIdleTimeout(-1))

	_, err := rt.Request(NewRef("pinned", "1"), getMsg{})
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		mock.Add(10 * time.Second)
	}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, rt.ActivationCount())
}

// 显式卸载后排队中的调用会在新实例上重试成功
func TestDeactivateThenReactivate(t *testing.T) {
	rt := newTestRuntime(t)
	rt.RegisterKind("counter", func() Behavior { return &counterBehavior{} })

	ref := NewRef("counter", "re")
	_, err := rt.Request(ref, incrMsg{})
	require.NoError(t, err)

	rt.Deactivate(ref)

	// 卸载可能还在进行中，新的调用要么等旧实例卸载完要么直达新实例
	res, err := rt.Request(ref, getMsg{})
	require.NoError(t, err)
	// 新实例从零开始
	assert.Contains(t, []int{0, 1}, res)
}

type panicBehavior struct{}

func (b *panicBehavior) Receive(ctx *Context) (any, error) {
	if _, o := ctx.Message.(incrMsg); o {
		panic("boom")
	}
	return "alive", nil
}

// Receive panic只让当前调用报错，实例还能继续服务
func TestPanicRecovery(t *testing.T) {
	rt := newTestRuntime(t)
	rt.RegisterKind("panicky", func() Behavior { return &panicBehavior{} })

	ref := NewRef("panicky", "1")
	_, err := rt.Request(ref, incrMsg{})
	require.Error(t, err)

	res, err := rt.Request(ref, getMsg{})
	require.NoError(t, err)
	assert.Equal(t, "alive", res)
}

type failActivateBehavior struct{}

func (b *failActivateBehavior) OnActivate(ctx *Context) error {
	return assert.AnError
}

func (b *failActivateBehavior) Receive(ctx *Context) (any, error) {
	return nil, nil
}

func TestActivateFailure(t *testing.T) {
	rt := newTestRuntime(t)
	rt.RegisterKind("bad", func() Behavior { return &failActivateBehavior{} })

	ref := NewRef("bad", "1")
	_, err := rt.Request(ref, getMsg{})
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return rt.ActivationCount() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStop(t *testing.T) {
	rt := NewRuntime()
	rt.RegisterKind("counter", func() Behavior { return &counterBehavior{} })
	_, err := rt.Request(NewRef("counter", "1"), incrMsg{})
	require.NoError(t, err)

	rt.Stop()
	assert.Equal(t, 0, rt.ActivationCount())

	_, err = rt.Request(NewRef("counter", "1"), getMsg{})
	assert.ErrorIs(t, err, ErrRuntimeClosed)

	// 重复Stop幂等
	rt.Stop()
}
