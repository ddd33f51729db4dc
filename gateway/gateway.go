// Package gateway TCP接入层，负责连接管理、协议分帧和消息到actor的分发
package gateway

import (
	"context"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/control"
	"github.com/huoshan017/gsgame/game"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/packet"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
)

const (
	DefaultHeartbeatTimeout  = 60 * time.Second
	DefaultHeartbeatInterval = 15 * time.Second
	DefaultReadBufferLen     = 4096
)

type options struct {
	gatewayId         int32
	heartbeatTimeout  time.Duration
	heartbeatInterval time.Duration
	clock             clock.Clock
	ctrlOptions       control.CtrlOptions
}

type Option func(*options)

func WithGatewayId(id int32) Option {
	return func(o *options) { o.gatewayId = id }
}

// WithHeartbeatTimeout 超过这个时长没收到任何数据就断开会话
func WithHeartbeatTimeout(d time.Duration) Option {
	return func(o *options) { o.heartbeatTimeout = d }
}

func WithHeartbeatInterval(d time.Duration) Option {
	return func(o *options) { o.heartbeatInterval = d }
}

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithCtrlOptions(c control.CtrlOptions) Option {
	return func(o *options) { o.ctrlOptions = c }
}

// Gateway 接入网关，每条连接一个读goroutine，业务全部转给actor运行时
type Gateway struct {
	opts     options
	rt       *actor.Runtime
	listener net.Listener

	sessions cmap.ConcurrentMap // session id -> *Session
	players  cmap.ConcurrentMap // player id(十进制串) -> *Session

	done   chan struct{}
	closed int32
	wg     sync.WaitGroup
}

func NewGateway(rt *actor.Runtime, opt ...Option) *Gateway {
	opts := options{
		heartbeatTimeout:  DefaultHeartbeatTimeout,
		heartbeatInterval: DefaultHeartbeatInterval,
		ctrlOptions:       control.CtrlOptions{ReuseAddr: 1},
	}
	for _, o := range opt {
		o(&opts)
	}
	if opts.clock == nil {
		opts.clock = clock.New()
	}
	return &Gateway{
		opts:     opts,
		rt:       rt,
		sessions: cmap.New(),
		players:  cmap.New(),
		done:     make(chan struct{}),
	}
}

func (g *Gateway) Listen(addr string) error {
	lc := net.ListenConfig{Control: control.GetControl(g.opts.ctrlOptions)}
	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "gateway listen %v", addr)
	}
	g.listener = listener
	return nil
}

func (g *Gateway) Addr() net.Addr {
	if g.listener == nil {
		return nil
	}
	return g.listener.Addr()
}

// Serve 接受连接直到Close，临时错误指数退避重试
func (g *Gateway) Serve() error {
	g.wg.Add(1)
	go g.heartbeatLoop()

	var delay time.Duration
	for {
		conn, err := g.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&g.closed) == 1 {
				return nil
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if delay == 0 {
					delay = 5 * time.Millisecond
				} else {
					delay *= 2
				}
				if max := 1 * time.Second; delay > max {
					delay = max
				}
				g.opts.clock.Sleep(delay)
				continue
			}
			return err
		}
		delay = 0

		s := newSession(conn, g.opts.clock.Now().UnixNano())
		g.sessions.Set(s.Id(), s)
		gsgame.GetLogger().Infof("gateway: session %v connected from %v", s.Id(), s.RemoteAddr())

		g.wg.Add(1)
		go g.handleSession(s)
	}
}

func (g *Gateway) Close() {
	if !atomic.CompareAndSwapInt32(&g.closed, 0, 1) {
		return
	}
	close(g.done)
	if g.listener != nil {
		g.listener.Close()
	}
	g.sessions.IterCb(func(_ string, v interface{}) {
		v.(*Session).Close()
	})
	g.wg.Wait()
}

func (g *Gateway) SessionCount() int {
	return g.sessions.Count()
}

// GetPlayerSession 按玩家ID查在线会话
func (g *Gateway) GetPlayerSession(playerId int64) (*Session, bool) {
	v, ok := g.players.Get(strconv.FormatInt(playerId, 10))
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// PushToPlayer 给在线玩家推已编码消息，玩家不在线返回false
func (g *Gateway) PushToPlayer(playerId int64, msgid uint16, payload []byte) bool {
	s, ok := g.GetPlayerSession(playerId)
	if !ok {
		return false
	}
	if err := s.SendMsg(msgid, payload); err != nil {
		gsgame.GetLogger().Warnf("gateway: push to player %v failed: %v", playerId, err)
		return false
	}
	return true
}

func (g *Gateway) handleSession(s *Session) {
	defer g.wg.Done()
	defer g.cleanupSession(s)

	buf := make([]byte, DefaultReadBufferLen)
	for {
		n, err := s.conn.Read(buf)
		if err != nil {
			if !s.isClosed() {
				gsgame.GetLogger().Debugf("gateway: session %v read ended: %v", s.Id(), err)
			}
			return
		}
		s.touch(g.opts.clock.Now().UnixNano())

		frames, err := s.decoder.Feed(buf[:n])
		if err != nil {
			// 分帧错误是协议违例，直接断开
			gsgame.GetLogger().Warnf("gateway: session %v decode failed: %v", s.Id(), err)
			return
		}
		for _, f := range frames {
			if err = g.dispatch(s, f); err != nil {
				gsgame.GetLogger().Warnf("gateway: session %v dispatch msg %v failed: %v", s.Id(), f.MsgId, err)
				return
			}
		}
	}
}

// dispatch 单条消息分发，返回非nil错误时断开会话
func (g *Gateway) dispatch(s *Session, f packet.Frame) error {
	m, err := msg.Decode(msg.MsgIdType(f.MsgId), f.Body)
	if err != nil {
		return err
	}

	switch req := m.(type) {
	case *msg.C2SHeartbeat:
		return g.SendToSession(s, &msg.S2CHeartbeat{ServerTimestamp: g.opts.clock.Now().UnixMilli()})
	case *msg.C2SLogin:
		return g.handleLogin(s, req)
	}

	// 未登录会话只放行心跳和登录，其余消息丢弃不断连
	if !s.Authed() {
		gsgame.GetLogger().Debugf("gateway: session %v dropped msg %v before login", s.Id(), f.MsgId)
		return nil
	}

	playerId := s.PlayerId()
	switch req := m.(type) {
	case *msg.C2SEnterRoom:
		res, err := g.rt.Request(game.PlayerRef(playerId), game.PlayerEnterRoom{RoomId: req.RoomId})
		if err != nil {
			return err
		}
		return g.SendToSession(s, res)
	case *msg.C2SPlayerAction:
		res, err := g.rt.Request(game.PlayerRef(playerId), game.PlayerAction{
			ActionType: req.ActionType,
			ActionData: req.ActionData,
		})
		if err != nil {
			return err
		}
		return g.SendToSession(s, res)
	case *msg.C2SRequestMatch:
		res, err := g.rt.Request(game.MatchRef(req.MatchType), game.MatchRequest{
			PlayerId: playerId,
			Rating:   req.Rating,
		})
		if err != nil {
			return err
		}
		return g.SendToSession(s, res)
	case *msg.C2SSendChat:
		return g.rt.Send(game.PlayerRef(playerId), game.PlayerSendChat{
			ChannelId: req.ChannelId,
			Content:   req.Content,
		})
	case *msg.C2SGetRank:
		res, err := g.rt.Request(game.RankRef(req.RankType), game.RankGetList{
			StartIndex: req.StartIndex,
			Count:      req.Count,
		})
		if err != nil {
			return err
		}
		return g.SendToSession(s, res)
	case *msg.C2SCreateOrder:
		res, err := g.rt.Request(game.PaymentRef("default"), game.PaymentCreateOrder{
			PlayerId:  playerId,
			ProductId: req.ProductId,
		})
		if err != nil {
			return err
		}
		return g.SendToSession(s, res)
	}

	gsgame.GetLogger().Warnf("gateway: session %v unhandled msg %v", s.Id(), f.MsgId)
	return nil
}

func (g *Gateway) handleLogin(s *Session, req *msg.C2SLogin) error {
	if s.Authed() {
		return g.SendToSession(s, &msg.S2CLogin{ErrorCode: msg.ErrCodeAccountAlreadyOnline, PlayerId: s.PlayerId()})
	}
	res, err := g.rt.Request(game.LoginRef(req.Account), game.LoginRequest{
		Req:       req,
		GatewayId: g.opts.gatewayId,
		RemoteIp:  s.RemoteIp(),
	})
	if err != nil {
		return err
	}
	reply, _ := res.(*msg.S2CLogin)
	if reply == nil {
		reply = &msg.S2CLogin{ErrorCode: msg.ErrCodeCommon}
	}

	if reply.ErrorCode == msg.ErrCodeSuccess {
		// 同一玩家重复登录时踢掉旧会话
		if old, ok := g.GetPlayerSession(reply.PlayerId); ok && old.Id() != s.Id() {
			gsgame.GetLogger().Infof("gateway: player %v relogin, kick session %v", reply.PlayerId, old.Id())
			old.Close()
		}
		s.bindPlayer(reply.PlayerId, req.Account)
		g.players.Set(strconv.FormatInt(reply.PlayerId, 10), s)
		if err = g.rt.Send(game.PlayerRef(reply.PlayerId), game.PlayerSubscribe{SessionId: s.Id(), Observer: s}); err != nil {
			gsgame.GetLogger().Errorf("gateway: subscribe player %v failed: %v", reply.PlayerId, err)
		}
	}
	return g.SendToSession(s, reply)
}

// SendToSession 编码并回给指定会话
func (g *Gateway) SendToSession(s *Session, m any) error {
	id, body, err := msg.Encode(m)
	if err != nil {
		return err
	}
	return s.SendMsg(uint16(id), body)
}

// cleanupSession 幂等清理，通知玩家actor连接已断开
func (g *Gateway) cleanupSession(s *Session) {
	s.Close()
	g.sessions.Remove(s.Id())

	playerId := s.PlayerId()
	if playerId != 0 {
		key := strconv.FormatInt(playerId, 10)
		// 只在会话仍是该玩家的当前会话时摘除，避免误删顶号后的新会话
		g.players.RemoveCb(key, func(_ string, v interface{}, exists bool) bool {
			return exists && v.(*Session) == s
		})
		if err := g.rt.Send(game.PlayerRef(playerId), game.PlayerDisconnected{SessionId: s.Id()}); err != nil {
			gsgame.GetLogger().Warnf("gateway: notify player %v disconnected failed: %v", playerId, err)
		}
		if account := s.Account(); account != "" {
			if err := g.rt.Send(game.LoginRef(account), game.LoginLogout{}); err != nil {
				gsgame.GetLogger().Warnf("gateway: logout account %v failed: %v", account, err)
			}
		}
	}
	gsgame.GetLogger().Infof("gateway: session %v closed", s.Id())
}

// heartbeatLoop 周期扫描会话活性，超时会话直接断开
func (g *Gateway) heartbeatLoop() {
	defer g.wg.Done()
	ticker := g.opts.clock.Ticker(g.opts.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.scanLiveness()
		case <-g.done:
			return
		}
	}
}

func (g *Gateway) scanLiveness() {
	deadline := g.opts.clock.Now().Add(-g.opts.heartbeatTimeout).UnixNano()
	var stale []*Session
	g.sessions.IterCb(func(_ string, v interface{}) {
		s := v.(*Session)
		if s.lastTouch() < deadline {
			stale = append(stale, s)
		}
	})
	for _, s := range stale {
		gsgame.GetLogger().Infof("gateway: session %v heartbeat timeout, closing", s.Id())
		s.Close()
	}
}
