package game

import (
	"sort"

	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/pkg/errors"
)

// 匹配actor的调用消息，actor按匹配类型分键，每个队列一个actor
type (
	// MatchRequest 立刻回复S2CMatchResult，RoomId为0表示已入队等待
	MatchRequest struct {
		PlayerId int64
		Rating   int32
	}
	MatchCancel struct {
		PlayerId int64
	}
	MatchGetQueueSize struct{}
)

type matchEntry struct {
	playerId int64
	rating   int32
	seq      int64 // 入队次序，评分相同时先来先配
}

type matchActor struct {
	cfg         *Config
	queue       []matchEntry
	deferred    []matchEntry // 本轮配对失败押后的，下个扫描周期回队
	nextSeq     int64
	nextRoomSeq int64
	scanTimerId int64
}

func newMatchActor(cfg *Config) actor.Behavior {
	return &matchActor{cfg: cfg}
}

func (m *matchActor) OnActivate(ctx *actor.Context) error {
	m.scanTimerId = ctx.StartTimer(m.cfg.MatchScanInterval)
	return nil
}

func (m *matchActor) OnDeactivate(ctx *actor.Context) {
	if m.scanTimerId != 0 {
		ctx.StopTimer(m.scanTimerId)
		m.scanTimerId = 0
	}
}

func (m *matchActor) Receive(ctx *actor.Context) (any, error) {
	switch req := ctx.Message.(type) {
	case MatchRequest:
		return m.request(ctx, req), nil
	case MatchCancel:
		return m.cancel(req.PlayerId), nil
	case MatchGetQueueSize:
		return len(m.queue) + len(m.deferred), nil
	case actor.TimerTick:
		if req.TimerId == m.scanTimerId {
			if len(m.deferred) > 0 {
				m.queue = append(m.queue, m.deferred...)
				m.deferred = nil
			}
			m.tryMatch(ctx)
		}
		return nil, nil
	}
	return nil, errors.Errorf("match actor: unknown message %T", ctx.Message)
}

func (m *matchActor) request(ctx *actor.Context, req MatchRequest) *msg.S2CMatchResult {
	if m.inQueue(req.PlayerId) {
		return &msg.S2CMatchResult{ErrorCode: msg.ErrCodeAlreadyInQueue}
	}
	m.nextSeq++
	m.queue = append(m.queue, matchEntry{
		playerId: req.PlayerId,
		rating:   req.Rating,
		seq:      m.nextSeq,
	})
	gsgame.GetLogger().Infof("match %v: player %v queued, rating %v, queue size %v",
		ctx.Id(), req.PlayerId, req.Rating, len(m.queue))

	// 入队即尝试一轮配对，直接配上时回包里带房间号，否则为0表示排队中
	paired := m.tryMatch(ctx)
	return &msg.S2CMatchResult{ErrorCode: msg.ErrCodeSuccess, RoomId: paired[req.PlayerId]}
}

func (m *matchActor) inQueue(playerId int64) bool {
	for _, e := range m.queue {
		if e.playerId == playerId {
			return true
		}
	}
	for _, e := range m.deferred {
		if e.playerId == playerId {
			return true
		}
	}
	return false
}

func (m *matchActor) cancel(playerId int64) *msg.S2CMatchResult {
	for i, e := range m.queue {
		if e.playerId == playerId {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return &msg.S2CMatchResult{ErrorCode: msg.ErrCodeSuccess}
		}
	}
	for i, e := range m.deferred {
		if e.playerId == playerId {
			m.deferred = append(m.deferred[:i], m.deferred[i+1:]...)
			return &msg.S2CMatchResult{ErrorCode: msg.ErrCodeSuccess}
		}
	}
	return &msg.S2CMatchResult{ErrorCode: msg.ErrCodeNotInMatchQueue}
}

// tryMatch 按评分升序扫描相邻对，评分差在阈值内即配成一对
// 每配成一对重新从头扫描，直到一轮扫不出新对
// 配对失败的押到deferred，本轮不再碰，保证单次调用必然收敛
// 返回本轮配成的玩家到房间号的映射
func (m *matchActor) tryMatch(ctx *actor.Context) map[int64]int64 {
	paired := make(map[int64]int64)
	for {
		if len(m.queue) < 2 {
			return paired
		}
		sort.SliceStable(m.queue, func(i, j int) bool {
			if m.queue[i].rating != m.queue[j].rating {
				return m.queue[i].rating < m.queue[j].rating
			}
			return m.queue[i].seq < m.queue[j].seq
		})

		matched := false
		for i := 0; i+1 < len(m.queue); i++ {
			a, b := m.queue[i], m.queue[i+1]
			if b.rating-a.rating > m.cfg.MatchRatingThreshold {
				continue
			}
			m.queue = append(m.queue[:i], m.queue[i+2:]...)
			if roomId, ok := m.createRoom(ctx, a, b); ok {
				paired[a.playerId] = roomId
				paired[b.playerId] = roomId
			}
			matched = true
			break
		}
		if !matched {
			return paired
		}
	}
}

// createRoom 配对成功后拉起房间并通知双方
// 入房被拒的玩家直接出局，同伴押后下轮重配；传输层错误则两人都押后
func (m *matchActor) createRoom(ctx *actor.Context, a, b matchEntry) (int64, bool) {
	m.nextRoomSeq++
	roomId := ctx.Now().UnixMilli()*1000 + m.nextRoomSeq%1000

	// 经玩家actor入房，让各自的CurrentRoomId一并更新
	entries := [2]matchEntry{a, b}
	for i, e := range entries {
		res, err := ctx.Request(PlayerRef(e.playerId), PlayerEnterRoom{RoomId: roomId})
		if err != nil {
			gsgame.GetLogger().Errorf("match %v: enter room %v for player %v failed: %v",
				ctx.Id(), roomId, e.playerId, err)
			m.rollback(ctx, entries[:i])
			m.deferred = append(m.deferred, a, b)
			return 0, false
		}
		if er, _ := res.(*msg.S2CEnterRoom); er == nil || er.ErrorCode != msg.ErrCodeSuccess {
			gsgame.GetLogger().Warnf("match %v: room %v rejected player %v, dropped from queue",
				ctx.Id(), roomId, e.playerId)
			m.rollback(ctx, entries[:i])
			m.deferred = append(m.deferred, entries[1-i])
			return 0, false
		}
	}
	if _, err := ctx.Request(RoomRef(roomId), RoomSetGameState{State: RoomStatePlaying}); err != nil {
		gsgame.GetLogger().Warnf("match %v: set room %v state failed: %v", ctx.Id(), roomId, err)
	}

	m.notify(ctx, a.playerId, roomId)
	m.notify(ctx, b.playerId, roomId)
	gsgame.GetLogger().Infof("match %v: paired players %v(%v) and %v(%v) into room %v",
		ctx.Id(), a.playerId, a.rating, b.playerId, b.rating, roomId)
	return roomId, true
}

// rollback 把已入房的玩家退出来，空房间会自行卸载
func (m *matchActor) rollback(ctx *actor.Context, entries []matchEntry) {
	for _, e := range entries {
		if _, err := ctx.Request(PlayerRef(e.playerId), PlayerLeaveRoom{}); err != nil {
			gsgame.GetLogger().Warnf("match %v: rollback leave room for player %v failed: %v",
				ctx.Id(), e.playerId, err)
		}
	}
}

func (m *matchActor) notify(ctx *actor.Context, playerId int64, roomId int64) {
	id, payload, err := msg.Encode(&msg.S2CMatchResult{ErrorCode: msg.ErrCodeSuccess, RoomId: roomId})
	if err != nil {
		gsgame.GetLogger().Errorf("match %v: encode match result failed: %v", ctx.Id(), err)
		return
	}
	if err = ctx.Send(PlayerRef(playerId), PlayerPushMessage{MsgId: uint16(id), Payload: payload}); err != nil {
		gsgame.GetLogger().Warnf("match %v: notify player %v failed: %v", ctx.Id(), playerId, err)
	}
}
