package game

import (
	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/store"
	"github.com/pkg/errors"
)

// 登录actor的调用消息，actor按账号分键，同一账号的登录串行化
type (
	LoginRequest struct {
		Req       *msg.C2SLogin
		GatewayId int32
		RemoteIp  string
	}
	// LoginLogout 网关在会话断开时发送，清掉在线标记
	LoginLogout struct{}
)

type loginActor struct {
	cfg      *Config
	online   bool
	playerId int64
}

func newLoginActor(cfg *Config) actor.Behavior {
	return &loginActor{cfg: cfg}
}

func (l *loginActor) Receive(ctx *actor.Context) (any, error) {
	switch m := ctx.Message.(type) {
	case LoginRequest:
		return l.login(ctx, m)
	case LoginLogout:
		l.online = false
		ctx.DeactivateOnIdle()
		return nil, nil
	}
	return nil, errors.Errorf("login actor: unknown message %T", ctx.Message)
}

func (l *loginActor) login(ctx *actor.Context, m LoginRequest) (*msg.S2CLogin, error) {
	if m.Req == nil || m.Req.Account == "" || m.Req.Token == "" {
		return &msg.S2CLogin{ErrorCode: msg.ErrCodeInvalidParam}, nil
	}
	if l.online {
		return &msg.S2CLogin{ErrorCode: msg.ErrCodeAccountAlreadyOnline}, nil
	}

	st := ctx.Runtime().Store()
	account := m.Req.Account

	playerId, err := st.GetPlayerIdByAccount(account)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			gsgame.GetLogger().Errorf("login: query account %v failed: %v", account, err)
			return &msg.S2CLogin{ErrorCode: msg.ErrCodeCommon}, nil
		}
		// 账号不存在则自动建号，玩家ID用毫秒时间戳生成
		playerId = ctx.Now().UnixMilli()
		if err = st.CreateAccount(account, playerId, m.Req.Token, m.Req.Platform); err != nil {
			gsgame.GetLogger().Errorf("login: create account %v failed: %v", account, err)
			return &msg.S2CLogin{ErrorCode: msg.ErrCodeCommon}, nil
		}
		if _, err = ctx.Request(PlayerRef(playerId), PlayerInitState{Account: account}); err != nil {
			gsgame.GetLogger().Errorf("login: init player %v state failed: %v", playerId, err)
			return &msg.S2CLogin{ErrorCode: msg.ErrCodeCommon}, nil
		}
	}

	if err = st.UpdateLastLogin(account); err != nil {
		gsgame.GetLogger().Warnf("login: update last login for %v failed: %v", account, err)
	}
	if err = st.AppendLoginLog(playerId, m.GatewayId, m.RemoteIp); err != nil {
		gsgame.GetLogger().Warnf("login: append login log for %v failed: %v", playerId, err)
	}

	res, err := ctx.Request(PlayerRef(playerId), PlayerGetInfo{})
	if err != nil {
		gsgame.GetLogger().Errorf("login: get player %v info failed: %v", playerId, err)
		return &msg.S2CLogin{ErrorCode: msg.ErrCodeCommon}, nil
	}
	info, _ := res.(*msg.S2CPlayerInfo)
	if info == nil {
		return &msg.S2CLogin{ErrorCode: msg.ErrCodeCommon}, nil
	}

	l.online = true
	l.playerId = playerId
	gsgame.GetLogger().Infof("login: account %v logged in, player %v, gateway %v, ip %v",
		account, playerId, m.GatewayId, m.RemoteIp)
	return &msg.S2CLogin{
		ErrorCode: msg.ErrCodeSuccess,
		PlayerId:  playerId,
		Nickname:  info.Nickname,
	}, nil
}
