package gateway

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/huoshan017/gsgame/packet"
)

// Session 一条客户端连接，登录成功后绑定玩家ID并作为该玩家的推送观察者
type Session struct {
	id      string
	conn    net.Conn
	decoder *packet.Decoder

	sendMu sync.Mutex

	playerId     int64        // 原子读写，0表示未登录
	account      atomic.Value // string
	authed       int32
	lastLiveness int64 // 最近一次收到数据的时间戳(纳秒)
	closed       int32
}

func newSession(conn net.Conn, now int64) *Session {
	s := &Session{
		id:           uuid.NewString(),
		conn:         conn,
		decoder:      packet.NewDecoder(),
		lastLiveness: now,
	}
	s.account.Store("")
	return s
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

// RemoteIp 去掉端口的对端地址
func (s *Session) RemoteIp() string {
	host, _, err := net.SplitHostPort(s.conn.RemoteAddr().String())
	if err != nil {
		return s.conn.RemoteAddr().String()
	}
	return host
}

func (s *Session) PlayerId() int64 {
	return atomic.LoadInt64(&s.playerId)
}

func (s *Session) Account() string {
	a, _ := s.account.Load().(string)
	return a
}

func (s *Session) Authed() bool {
	return atomic.LoadInt32(&s.authed) == 1
}

func (s *Session) bindPlayer(playerId int64, account string) {
	atomic.StoreInt64(&s.playerId, playerId)
	s.account.Store(account)
	atomic.StoreInt32(&s.authed, 1)
}

func (s *Session) touch(now int64) {
	atomic.StoreInt64(&s.lastLiveness, now)
}

func (s *Session) lastTouch() int64 {
	return atomic.LoadInt64(&s.lastLiveness)
}

// SendMsg 编码成完整帧写出，写操作串行化
func (s *Session) SendMsg(msgid uint16, body []byte) error {
	frame := packet.Encode(msgid, body)
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	_, err := s.conn.Write(frame)
	return err
}

// Push 实现actor.Observer，actor侧经这里把消息推给客户端
func (s *Session) Push(msgid uint16, payload []byte) error {
	return s.SendMsg(msgid, payload)
}

// Close 幂等，重复调用只有第一次生效
func (s *Session) Close() {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return
	}
	s.conn.Close()
}

func (s *Session) isClosed() bool {
	return atomic.LoadInt32(&s.closed) == 1
}
