package gateway

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/game"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/packet"
	"github.com/huoshan017/gsgame/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestGateway(t *testing.T, opts ...Option) *Gateway {
	t.Helper()
	rt := actor.NewRuntime(actor.WithStore(store.NewMemStore()))
	game.RegisterKinds(rt, game.DefaultConfig())
	t.Cleanup(rt.Stop)

	gw := NewGateway(rt, opts...)
	require.NoError(t, gw.Listen("127.0.0.1:0"))
	go gw.Serve()
	t.Cleanup(gw.Close)
	return gw
}

func dialTestGateway(t *testing.T, gw *Gateway) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", gw.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn net.Conn, m any) {
	t.Helper()
	frame, err := msg.EncodeFrame(m)
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)
}

func recvMsg(t *testing.T, conn net.Conn) any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	var hdr [packet.HeaderLen]byte
	_, err := io.ReadFull(conn, hdr[:])
	require.NoError(t, err)
	bodyLen, msgid, err := packet.DecodeHeader(hdr[:])
	require.NoError(t, err)

	body := make([]byte, bodyLen)
	_, err = io.ReadFull(conn, body)
	require.NoError(t, err)

	m, err := msg.Decode(msg.MsgIdType(msgid), body)
	require.NoError(t, err)
	return m
}

func login(t *testing.T, conn net.Conn, account string) *msg.S2CLogin {
	t.Helper()
	sendMsg(t, conn, &msg.C2SLogin{Account: account, Token: "tk", Platform: 1})
	reply := recvMsg(t, conn).(*msg.S2CLogin)
	require.Equal(t, int32(msg.ErrCodeSuccess), reply.ErrorCode)
	return reply
}

func TestGatewayLoginFlow(t *testing.T) {
	gw := startTestGateway(t)
	conn := dialTestGateway(t, gw)

	reply := login(t, conn, "acc1")
	assert.NotZero(t, reply.PlayerId)
	assert.NotEmpty(t, reply.Nickname)
}

func TestGatewayHeartbeat(t *testing.T) {
	gw := startTestGateway(t)
	conn := dialTestGateway(t, gw)

	// 心跳不需要登录
	sendMsg(t, conn, &msg.C2SHeartbeat{ClientTimestamp: 123})
	reply := recvMsg(t, conn).(*msg.S2CHeartbeat)
	assert.NotZero(t, reply.ServerTimestamp)
}

// 未登录的业务消息被丢弃但不断连
func TestGatewayDropsUnauthedMessages(t *testing.T) {
	gw := startTestGateway(t)
	conn := dialTestGateway(t, gw)

	sendMsg(t, conn, &msg.C2SPlayerAction{ActionType: 1, ActionData: 2})
	sendMsg(t, conn, &msg.C2SHeartbeat{})

	// 第一条被丢弃，回的是心跳
	_, isHeartbeat := recvMsg(t, conn).(*msg.S2CHeartbeat)
	assert.True(t, isHeartbeat)
}

// 未知消息ID是协议违例，直接断连
func TestGatewayClosesOnUnknownMsgId(t *testing.T) {
	gw := startTestGateway(t)
	conn := dialTestGateway(t, gw)

	_, err := conn.Write(packet.Encode(12345, []byte{0x01}))
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	buf := make([]byte, 16)
	_, err = conn.Read(buf)
	assert.Error(t, err)
}

func TestGatewayEnterRoomAndAction(t *testing.T) {
	gw := startTestGateway(t)
	conn := dialTestGateway(t, gw)
	login(t, conn, "acc1")

	sendMsg(t, conn, &msg.C2SEnterRoom{RoomId: 7})
	enter := recvMsg(t, conn).(*msg.S2CEnterRoom)
	require.Equal(t, int32(msg.ErrCodeSuccess), enter.ErrorCode)
	assert.Equal(t, int64(7), enter.RoomId)

	// 房间内操作会广播回来，先收到哪个都有可能
	sendMsg(t, conn, &msg.C2SPlayerAction{ActionType: 3, ActionData: 4})
	var gotEcho, gotBroadcast bool
	for i := 0; i < 2; i++ {
		if action, ok := recvMsg(t, conn).(*msg.S2CPlayerAction); ok {
			assert.Equal(t, int32(3), action.ActionType)
			assert.Equal(t, int32(4), action.ActionData)
			if gotEcho {
				gotBroadcast = true
			}
			gotEcho = true
		}
	}
	assert.True(t, gotEcho && gotBroadcast)
}

func TestGatewayMatchResultPush(t *testing.T) {
	gw := startTestGateway(t)
	connA := dialTestGateway(t, gw)
	connB := dialTestGateway(t, gw)
	login(t, connA, "accA")
	login(t, connB, "accB")

	sendMsg(t, connA, &msg.C2SRequestMatch{Rating: 1000})
	first := recvMsg(t, connA).(*msg.S2CMatchResult)
	require.Equal(t, int32(msg.ErrCodeSuccess), first.ErrorCode)
	assert.Zero(t, first.RoomId)

	sendMsg(t, connB, &msg.C2SRequestMatch{Rating: 1050})

	// 双方都会收到带房间号的推送
	var roomA, roomB int64
	for roomA == 0 {
		if res, ok := recvMsg(t, connA).(*msg.S2CMatchResult); ok {
			roomA = res.RoomId
		}
	}
	for roomB == 0 {
		if res, ok := recvMsg(t, connB).(*msg.S2CMatchResult); ok {
			roomB = res.RoomId
		}
	}
	assert.Equal(t, roomA, roomB)
}

// 心跳超时的会话被扫描关闭
func TestGatewayHeartbeatTimeout(t *testing.T) {
	mock := clock.NewMock()
	gw := startTestGateway(t,
		WithClock(mock),
		WithHeartbeatTimeout(10*time.Second),
		WithHeartbeatInterval(time.Second),
	)
	conn := dialTestGateway(t, gw)

	sendMsg(t, conn, &msg.C2SHeartbeat{})
	recvMsg(t, conn)
	require.Equal(t, 1, gw.SessionCount())

	time.Sleep(50 * time.Millisecond) // 等心跳扫描goroutine挂上ticker
	for i := 0; i < 15; i++ {
		mock.Add(time.Second)
		time.Sleep(2 * time.Millisecond)
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	buf := make([]byte, 16)
	_, err := conn.Read(buf)
	assert.Error(t, err)

	require.Eventually(t, func() bool {
		return gw.SessionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// 顶号后旧会话的清理不能摘掉新会话的玩家映射
func TestGatewayCleanupKeepsReloginMapping(t *testing.T) {
	gw := startTestGateway(t)

	c1, p1 := net.Pipe()
	c2, p2 := net.Pipe()
	t.Cleanup(func() { c1.Close(); p1.Close(); c2.Close(); p2.Close() })

	oldSess := newSession(c1, time.Now().UnixNano())
	newSess := newSession(c2, time.Now().UnixNano())
	oldSess.bindPlayer(42, "acc42")
	newSess.bindPlayer(42, "acc42")
	gw.sessions.Set(oldSess.Id(), oldSess)
	gw.sessions.Set(newSess.Id(), newSess)

	// 新会话已经顶掉映射，旧会话的清理晚到
	gw.players.Set("42", newSess)
	gw.cleanupSession(oldSess)

	s, ok := gw.GetPlayerSession(42)
	require.True(t, ok)
	assert.Same(t, newSess, s)

	// 轮到新会话自己清理时才摘除
	gw.cleanupSession(newSess)
	_, ok = gw.GetPlayerSession(42)
	assert.False(t, ok)
}

func TestGatewayPushToPlayer(t *testing.T) {
	gw := startTestGateway(t)
	conn := dialTestGateway(t, gw)
	reply := login(t, conn, "acc1")

	id, body, err := msg.Encode(&msg.S2CChatMessage{Content: "direct"})
	require.NoError(t, err)
	require.True(t, gw.PushToPlayer(reply.PlayerId, uint16(id), body))

	got := recvMsg(t, conn).(*msg.S2CChatMessage)
	assert.Equal(t, "direct", got.Content)

	assert.False(t, gw.PushToPlayer(99999, uint16(id), body))
}
