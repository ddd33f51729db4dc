package game

import (
	"time"

	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/store"
	"github.com/pkg/errors"
)

// PlayerState 持久化的玩家状态
type PlayerState struct {
	PlayerId      int64          `msgpack:"player_id"`
	Account       string         `msgpack:"account"`
	Nickname      string         `msgpack:"nickname"`
	Level         int32          `msgpack:"level"`
	Exp           int64          `msgpack:"exp"`
	Items         []msg.ItemInfo `msgpack:"items"`
	CreateTime    time.Time      `msgpack:"create_time"`
	LastLoginTime time.Time      `msgpack:"last_login_time"`
	CurrentRoomId int64          `msgpack:"current_room_id"`
	Rating        int32          `msgpack:"rating"`
}

// 玩家actor的调用消息
type (
	// PlayerInitState 首次建号时由login actor调用
	PlayerInitState struct {
		Account string
	}
	// PlayerSubscribe 网关登录成功后注册推送观察者
	PlayerSubscribe struct {
		SessionId string
		Observer  actor.Observer
	}
	// PlayerDisconnected 连接断开的尽力通知，带会话ID，
	// 顶号后旧连接晚到的通知不能清掉新连接的观察者
	PlayerDisconnected struct {
		SessionId string
	}
	PlayerGetInfo      struct{}
	PlayerGetBag       struct{}
	PlayerEnterRoom    struct {
		RoomId int64
	}
	PlayerLeaveRoom struct{}
	PlayerAction    struct {
		ActionType int32
		ActionData int32
	}
	PlayerSendChat struct {
		ChannelId string
		Content   string
	}
	PlayerAddItem struct {
		ItemId int32
		Count  int32
	}
	PlayerAddExp struct {
		Exp int64
	}
	// PlayerPushMessage 已编码消息经observer推给客户端，别的actor广播时用
	PlayerPushMessage struct {
		MsgId   uint16
		Payload []byte
	}
)

type playerActor struct {
	cfg             *Config
	state           PlayerState
	observer        actor.Observer
	observerSession string
}

func newPlayerActor(cfg *Config) actor.Behavior {
	return &playerActor{cfg: cfg}
}

func (p *playerActor) OnActivate(ctx *actor.Context) error {
	err := ctx.ReadState(&p.state)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		p.state = PlayerState{
			PlayerId: ctx.IntId(),
			Level:    1,
			Rating:   1000,
		}
		if err = ctx.WriteState(&p.state); err != nil {
			return err
		}
	}
	return nil
}

func (p *playerActor) OnDeactivate(ctx *actor.Context) {
	if err := ctx.WriteState(&p.state); err != nil {
		gsgame.GetLogger().Errorf("player %v flush state on deactivate failed: %v", p.state.PlayerId, err)
	}
}

func (p *playerActor) Receive(ctx *actor.Context) (any, error) {
	switch m := ctx.Message.(type) {
	case PlayerInitState:
		return nil, p.initState(ctx, m.Account)
	case PlayerSubscribe:
		p.observer = m.Observer
		p.observerSession = m.SessionId
		return nil, nil
	case PlayerDisconnected:
		return nil, p.onDisconnected(ctx, m.SessionId)
	case PlayerGetInfo:
		return &msg.S2CPlayerInfo{
			PlayerId: p.state.PlayerId,
			Nickname: p.state.Nickname,
			Level:    p.state.Level,
			Exp:      p.state.Exp,
		}, nil
	case PlayerGetBag:
		return &msg.S2CBagInfo{Items: p.state.Items}, nil
	case PlayerEnterRoom:
		return p.enterRoom(ctx, m.RoomId), nil
	case PlayerLeaveRoom:
		return nil, p.leaveRoom(ctx)
	case PlayerAction:
		return p.playerAction(ctx, m), nil
	case PlayerSendChat:
		return nil, p.sendChat(ctx, m)
	case PlayerAddItem:
		return nil, p.addItem(ctx, m)
	case PlayerAddExp:
		return nil, p.addExp(ctx, m.Exp)
	case PlayerPushMessage:
		p.pushRaw(m.MsgId, m.Payload)
		return nil, nil
	}
	return nil, errors.Errorf("player actor: unknown message %T", ctx.Message)
}

func (p *playerActor) initState(ctx *actor.Context, account string) error {
	now := ctx.Now()
	p.state = PlayerState{
		PlayerId: ctx.IntId(),
		Account:  account,
		Nickname: "Player" + ctx.Id(),
		Level:    1,
		Exp:      0,
		Items: []msg.ItemInfo{
			{ItemId: 1001, Count: 100}, // 初始金币
			{ItemId: 2001, Count: 1},   // 初始道具
		},
		CreateTime:    now,
		LastLoginTime: now,
		Rating:        1000,
	}
	return ctx.WriteState(&p.state)
}

func (p *playerActor) onDisconnected(ctx *actor.Context, sessionId string) error {
	if sessionId != p.observerSession {
		// 旧会话的断开通知，当前观察者已经换人
		gsgame.GetLogger().Debugf("player %v stale disconnect from session %v ignored",
			p.state.PlayerId, sessionId)
		return nil
	}
	p.observer = nil
	p.observerSession = ""

	if p.state.CurrentRoomId > 0 {
		if _, err := ctx.Request(RoomRef(p.state.CurrentRoomId), RoomLeave{PlayerId: p.state.PlayerId}); err != nil {
			gsgame.GetLogger().Warnf("player %v leave room %v on disconnect failed: %v",
				p.state.PlayerId, p.state.CurrentRoomId, err)
		}
		p.state.CurrentRoomId = 0
		if err := ctx.WriteState(&p.state); err != nil {
			return err
		}
	}

	ctx.DeactivateOnIdle()
	return nil
}

func (p *playerActor) enterRoom(ctx *actor.Context, roomId int64) *msg.S2CEnterRoom {
	if p.state.CurrentRoomId > 0 {
		return &msg.S2CEnterRoom{
			ErrorCode: msg.ErrCodePlayerAlreadyInRoom,
			RoomId:    p.state.CurrentRoomId,
		}
	}

	res, err := ctx.Request(RoomRef(roomId), RoomJoin{PlayerId: p.state.PlayerId})
	if err != nil {
		gsgame.GetLogger().Errorf("player %v join room %v failed: %v", p.state.PlayerId, roomId, err)
		return &msg.S2CEnterRoom{ErrorCode: msg.ErrCodeRoomNotFound}
	}
	if ok, _ := res.(bool); !ok {
		return &msg.S2CEnterRoom{ErrorCode: msg.ErrCodeRoomFull}
	}

	p.state.CurrentRoomId = roomId
	if err = ctx.WriteState(&p.state); err != nil {
		gsgame.GetLogger().Errorf("player %v persist room id failed: %v", p.state.PlayerId, err)
	}
	return &msg.S2CEnterRoom{ErrorCode: msg.ErrCodeSuccess, RoomId: roomId}
}

func (p *playerActor) leaveRoom(ctx *actor.Context) error {
	if p.state.CurrentRoomId <= 0 {
		return nil
	}
	if _, err := ctx.Request(RoomRef(p.state.CurrentRoomId), RoomLeave{PlayerId: p.state.PlayerId}); err != nil {
		return err
	}
	p.state.CurrentRoomId = 0
	return ctx.WriteState(&p.state)
}

// playerAction 在房间内时转给房间广播，始终回一个echo响应
func (p *playerActor) playerAction(ctx *actor.Context, m PlayerAction) *msg.S2CPlayerAction {
	if p.state.CurrentRoomId > 0 {
		err := ctx.Send(RoomRef(p.state.CurrentRoomId), RoomPlayerAction{
			PlayerId:   p.state.PlayerId,
			ActionType: m.ActionType,
			ActionData: m.ActionData,
		})
		if err != nil {
			gsgame.GetLogger().Warnf("player %v forward action to room %v failed: %v",
				p.state.PlayerId, p.state.CurrentRoomId, err)
		}
	}
	return &msg.S2CPlayerAction{
		PlayerId:   p.state.PlayerId,
		ActionType: m.ActionType,
		ActionData: m.ActionData,
	}
}

func (p *playerActor) sendChat(ctx *actor.Context, m PlayerSendChat) error {
	return ctx.Send(ChatRef(m.ChannelId), ChatSend{
		SenderId:       p.state.PlayerId,
		SenderNickname: p.state.Nickname,
		Content:        m.Content,
	})
}

func (p *playerActor) addItem(ctx *actor.Context, m PlayerAddItem) error {
	found := false
	for i := range p.state.Items {
		if p.state.Items[i].ItemId == m.ItemId {
			p.state.Items[i].Count += m.Count
			found = true
			break
		}
	}
	if !found {
		p.state.Items = append(p.state.Items, msg.ItemInfo{ItemId: m.ItemId, Count: m.Count})
	}
	if err := ctx.WriteState(&p.state); err != nil {
		return err
	}

	// 通知客户端背包更新
	p.push(&msg.S2CBagInfo{Items: p.state.Items})
	return nil
}

// addExp 每1000经验升1级
func (p *playerActor) addExp(ctx *actor.Context, exp int64) error {
	p.state.Exp += exp
	newLevel := int32(1 + p.state.Exp/1000)
	if newLevel > p.state.Level {
		p.state.Level = newLevel
		gsgame.GetLogger().Infof("player %v leveled up to %v", p.state.PlayerId, newLevel)
	}
	return ctx.WriteState(&p.state)
}

// push 编码并推送，observer缺失或失败只记日志，不影响当前调用
func (p *playerActor) push(m any) {
	id, payload, err := msg.Encode(m)
	if err != nil {
		gsgame.GetLogger().Errorf("player %v encode push message failed: %v", p.state.PlayerId, err)
		return
	}
	p.pushRaw(uint16(id), payload)
}

func (p *playerActor) pushRaw(msgid uint16, payload []byte) {
	if p.observer == nil {
		gsgame.GetLogger().Debugf("player %v push %v dropped: no observer", p.state.PlayerId, msgid)
		return
	}
	if err := p.observer.Push(msgid, payload); err != nil {
		gsgame.GetLogger().Warnf("player %v push %v failed: %v", p.state.PlayerId, msgid, err)
	}
}
