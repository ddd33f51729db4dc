package game

import (
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/store"
)

// testObserver 收集每次推送，给断言用
type testObserver struct {
	mu     sync.Mutex
	pushes []pushRecord
}

type pushRecord struct {
	msgId   uint16
	payload []byte
}

func (o *testObserver) Push(msgid uint16, payload []byte) error {
	o.mu.Lock()
	o.pushes = append(o.pushes, pushRecord{msgId: msgid, payload: payload})
	o.mu.Unlock()
	return nil
}

// decoded 解出所有指定类型的推送消息
func decodedPushes[T any](t *testing.T, o *testObserver, msgid msg.MsgIdType) []*T {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []*T
	for _, p := range o.pushes {
		if p.msgId != uint16(msgid) {
			continue
		}
		m, err := msg.Decode(msgid, p.payload)
		if err != nil {
			t.Fatalf("decode push %v failed: %v", p.msgId, err)
		}
		out = append(out, m.(*T))
	}
	return out
}

func newGameRuntime(t *testing.T, cfg *Config, opts ...actor.Option) (*actor.Runtime, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	rt := actor.NewRuntime(append([]actor.Option{actor.WithStore(st)}, opts...)...)
	RegisterKinds(rt, cfg)
	t.Cleanup(rt.Stop)
	return rt, st
}

func newMockGameRuntime(t *testing.T, cfg *Config) (*actor.Runtime, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	rt, _ := newGameRuntime(t, cfg, actor.WithClock(mock))
	return rt, mock
}
