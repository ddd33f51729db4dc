package game

import (
	"testing"

	"github.com/huoshan017/gsgame/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginCreatesAccount(t *testing.T) {
	rt, st := newGameRuntime(t, DefaultConfig())

	res, err := rt.Request(LoginRef("acc1"), LoginRequest{
		Req:       &msg.C2SLogin{Account: "acc1", Token: "tk", Platform: 1},
		GatewayId: 1,
		RemoteIp:  "127.0.0.1",
	})
	require.NoError(t, err)
	reply := res.(*msg.S2CLogin)
	require.Equal(t, int32(msg.ErrCodeSuccess), reply.ErrorCode)
	assert.NotZero(t, reply.PlayerId)
	assert.NotEmpty(t, reply.Nickname)

	// 账号表里出现了这条账号，登录流水写了一条
	id, err := st.GetPlayerIdByAccount("acc1")
	require.NoError(t, err)
	assert.Equal(t, reply.PlayerId, id)
	assert.Equal(t, 1, st.LoginLogCount())
}

func TestLoginExistingAccountKeepsPlayerId(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())

	login := func() *msg.S2CLogin {
		res, err := rt.Request(LoginRef("acc1"), LoginRequest{
			Req: &msg.C2SLogin{Account: "acc1", Token: "tk"},
		})
		require.NoError(t, err)
		return res.(*msg.S2CLogin)
	}

	first := login()
	require.Equal(t, int32(msg.ErrCodeSuccess), first.ErrorCode)

	// 登出后再次登录，玩家ID不变
	require.NoError(t, rt.Send(LoginRef("acc1"), LoginLogout{}))
	second := login()
	require.Equal(t, int32(msg.ErrCodeSuccess), second.ErrorCode)
	assert.Equal(t, first.PlayerId, second.PlayerId)
}

func TestLoginAlreadyOnline(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())

	req := LoginRequest{Req: &msg.C2SLogin{Account: "acc1", Token: "tk"}}
	res, err := rt.Request(LoginRef("acc1"), req)
	require.NoError(t, err)
	require.Equal(t, int32(msg.ErrCodeSuccess), res.(*msg.S2CLogin).ErrorCode)

	res, err = rt.Request(LoginRef("acc1"), req)
	require.NoError(t, err)
	assert.Equal(t, int32(msg.ErrCodeAccountAlreadyOnline), res.(*msg.S2CLogin).ErrorCode)
}

func TestLoginInvalidParam(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())

	for _, req := range []*msg.C2SLogin{
		nil,
		{Account: "", Token: "tk"},
		{Account: "acc1", Token: ""},
	} {
		res, err := rt.Request(LoginRef("acc-invalid"), LoginRequest{Req: req})
		require.NoError(t, err)
		assert.Equal(t, int32(msg.ErrCodeInvalidParam), res.(*msg.S2CLogin).ErrorCode)
	}
}
