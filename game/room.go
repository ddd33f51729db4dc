package game

import (
	"time"

	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/store"
	"github.com/pkg/errors"
)

// 房间状态机
const (
	RoomStateWaiting = 0 // 等待玩家
	RoomStatePlaying = 1 // 对局中
	RoomStateEnded   = 2 // 已结束
)

// RoomState 持久化的房间状态，帧计数和未广播输入不落盘
type RoomState struct {
	RoomId     int64     `msgpack:"room_id"`
	RoomName   string    `msgpack:"room_name"`
	MaxPlayers int32     `msgpack:"max_players"`
	Players    []int64   `msgpack:"players"`
	CreateTime time.Time `msgpack:"create_time"`
	GameState  int32     `msgpack:"game_state"`
	RoomType   int32     `msgpack:"room_type"`
}

// 房间actor的调用消息
type (
	// RoomJoin 回复bool，false表示满员拒绝
	RoomJoin struct {
		PlayerId int64
	}
	RoomLeave struct {
		PlayerId int64
	}
	RoomPlayerAction struct {
		PlayerId   int64
		ActionType int32
		ActionData int32
	}
	RoomGetInfo      struct{}
	RoomSetGameState struct {
		State int32
	}
	// RoomStartFrameSync Rate<=0时用配置的默认帧率
	RoomStartFrameSync struct {
		Rate int32
	}
	RoomStopFrameSync struct{}
)

// RoomInfo RoomGetInfo的回复
type RoomInfo struct {
	RoomId      int64
	PlayerIds   []int64
	MaxPlayers  int32
	GameState   int32
	FrameId     int32
	FrameSyncOn bool
}

type roomActor struct {
	cfg   *Config
	state RoomState

	// 帧同步运行态，不持久化
	frameTimerId int64
	frameId      int32
	pendingInput []msg.FrameInput
}

func newRoomActor(cfg *Config) actor.Behavior {
	return &roomActor{cfg: cfg}
}

func (r *roomActor) OnActivate(ctx *actor.Context) error {
	err := ctx.ReadState(&r.state)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		r.state = RoomState{
			RoomId:     ctx.IntId(),
			MaxPlayers: r.cfg.RoomMaxPlayers,
			CreateTime: ctx.Now(),
			GameState:  RoomStateWaiting,
		}
	}
	return nil
}

func (r *roomActor) OnDeactivate(ctx *actor.Context) {
	r.frameTimerId = 0
	if err := ctx.WriteState(&r.state); err != nil {
		gsgame.GetLogger().Errorf("room %v: flush state on deactivate failed: %v", r.state.RoomId, err)
	}
}

func (r *roomActor) Receive(ctx *actor.Context) (any, error) {
	switch m := ctx.Message.(type) {
	case RoomJoin:
		return r.join(ctx, m.PlayerId), nil
	case RoomLeave:
		r.leave(ctx, m.PlayerId)
		return nil, nil
	case RoomPlayerAction:
		r.playerAction(ctx, m)
		return nil, nil
	case RoomGetInfo:
		return r.info(), nil
	case RoomSetGameState:
		r.state.GameState = m.State
		return nil, ctx.WriteState(&r.state)
	case RoomStartFrameSync:
		r.startFrameSync(ctx, m.Rate)
		return nil, nil
	case RoomStopFrameSync:
		r.stopFrameSync(ctx)
		return nil, nil
	case actor.TimerTick:
		if m.TimerId == r.frameTimerId {
			r.tickFrame(ctx)
		}
		return nil, nil
	}
	return nil, errors.Errorf("room actor: unknown message %T", ctx.Message)
}

func (r *roomActor) join(ctx *actor.Context, playerId int64) bool {
	if r.inRoom(playerId) {
		return true // 重复加入幂等
	}
	if int32(len(r.state.Players)) >= r.state.MaxPlayers {
		return false
	}
	r.state.Players = append(r.state.Players, playerId)
	if err := ctx.WriteState(&r.state); err != nil {
		gsgame.GetLogger().Errorf("room %v: persist join failed: %v", r.state.RoomId, err)
	}
	gsgame.GetLogger().Infof("room %v: player %v joined, %v/%v",
		r.state.RoomId, playerId, len(r.state.Players), r.state.MaxPlayers)

	// 通知已有成员有人进房
	r.broadcastExcept(ctx, playerId, &msg.S2CEnterRoom{
		ErrorCode: msg.ErrCodeSuccess,
		RoomId:    r.state.RoomId,
	})
	return true
}

func (r *roomActor) leave(ctx *actor.Context, playerId int64) {
	for i, id := range r.state.Players {
		if id == playerId {
			r.state.Players = append(r.state.Players[:i], r.state.Players[i+1:]...)
			gsgame.GetLogger().Infof("room %v: player %v left, %v remain",
				r.state.RoomId, playerId, len(r.state.Players))
			break
		}
	}
	// 空房间结束对局并直接卸载
	if len(r.state.Players) == 0 {
		r.stopFrameSync(ctx)
		ctx.DeactivateOnIdle()
		return
	}
	if err := ctx.WriteState(&r.state); err != nil {
		gsgame.GetLogger().Errorf("room %v: persist leave failed: %v", r.state.RoomId, err)
	}
	// 剩余成员收到名单变更通知
	r.broadcast(ctx, &msg.S2CEnterRoom{
		ErrorCode: msg.ErrCodeSuccess,
		RoomId:    r.state.RoomId,
	})
}

// playerAction 帧同步开启时缓存进当前帧，否则立刻广播
func (r *roomActor) playerAction(ctx *actor.Context, m RoomPlayerAction) {
	if !r.inRoom(m.PlayerId) {
		return
	}
	if r.frameTimerId != 0 {
		r.pendingInput = append(r.pendingInput, msg.FrameInput{
			PlayerId:   m.PlayerId,
			ActionType: m.ActionType,
			ActionData: m.ActionData,
		})
		return
	}
	r.broadcast(ctx, &msg.S2CPlayerAction{
		PlayerId:   m.PlayerId,
		ActionType: m.ActionType,
		ActionData: m.ActionData,
	})
}

func (r *roomActor) info() *RoomInfo {
	ids := make([]int64, len(r.state.Players))
	copy(ids, r.state.Players)
	return &RoomInfo{
		RoomId:      r.state.RoomId,
		PlayerIds:   ids,
		MaxPlayers:  r.state.MaxPlayers,
		GameState:   r.state.GameState,
		FrameId:     r.frameId,
		FrameSyncOn: r.frameTimerId != 0,
	}
}

func (r *roomActor) startFrameSync(ctx *actor.Context, rate int32) {
	if r.frameTimerId != 0 {
		gsgame.GetLogger().Warnf("room %v: frame sync already running", r.state.RoomId)
		return
	}
	if rate <= 0 {
		rate = r.cfg.DefaultFrameRate
	}
	r.frameId = 0
	r.pendingInput = nil
	r.frameTimerId = ctx.StartTimer(time.Second / time.Duration(rate))
	r.state.GameState = RoomStatePlaying
	if err := ctx.WriteState(&r.state); err != nil {
		gsgame.GetLogger().Errorf("room %v: persist frame sync start failed: %v", r.state.RoomId, err)
	}
	gsgame.GetLogger().Infof("room %v: frame sync started at %v fps", r.state.RoomId, rate)
}

// stopFrameSync 停帧即对局结束，状态无条件落盘
func (r *roomActor) stopFrameSync(ctx *actor.Context) {
	if r.frameTimerId != 0 {
		ctx.StopTimer(r.frameTimerId)
		r.frameTimerId = 0
		r.pendingInput = nil
		gsgame.GetLogger().Infof("room %v: frame sync stopped at frame %v", r.state.RoomId, r.frameId)
	}
	r.state.GameState = RoomStateEnded
	if err := ctx.WriteState(&r.state); err != nil {
		gsgame.GetLogger().Errorf("room %v: persist frame sync stop failed: %v", r.state.RoomId, err)
	}
}

// tickFrame 帧号单调递增，没有输入也照发空帧保持客户端推进
func (r *roomActor) tickFrame(ctx *actor.Context) {
	r.frameId++
	inputs := r.pendingInput
	r.pendingInput = nil
	r.broadcast(ctx, &msg.S2CFrameData{FrameId: r.frameId, Inputs: inputs})
}

// broadcast 编码一次，经各玩家actor的observer扇出，单个成员失败不影响其他人
func (r *roomActor) broadcast(ctx *actor.Context, m any) {
	r.broadcastExcept(ctx, 0, m)
}

func (r *roomActor) broadcastExcept(ctx *actor.Context, exclude int64, m any) {
	id, payload, err := msg.Encode(m)
	if err != nil {
		gsgame.GetLogger().Errorf("room %v: encode broadcast %T failed: %v", r.state.RoomId, m, err)
		return
	}
	for _, playerId := range r.state.Players {
		if playerId == exclude {
			continue
		}
		if err = ctx.Send(PlayerRef(playerId), PlayerPushMessage{MsgId: uint16(id), Payload: payload}); err != nil {
			gsgame.GetLogger().Warnf("room %v: push to player %v failed: %v", r.state.RoomId, playerId, err)
		}
	}
}

func (r *roomActor) inRoom(playerId int64) bool {
	for _, id := range r.state.Players {
		if id == playerId {
			return true
		}
	}
	return false
}
