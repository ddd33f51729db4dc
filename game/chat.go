package game

import (
	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/pkg/errors"
)

// 聊天actor的调用消息，actor按频道分键
type (
	ChatJoin struct {
		PlayerId int64
	}
	ChatLeave struct {
		PlayerId int64
	}
	ChatSend struct {
		SenderId       int64
		SenderNickname string
		Content        string
	}
	// ChatGetRecent 回复[]msg.S2CChatMessage，Count<=0表示全部缓存的历史
	ChatGetRecent struct {
		Count int
	}
)

type chatActor struct {
	cfg     *Config
	members map[int64]struct{}
	recent  []msg.S2CChatMessage
}

func newChatActor(cfg *Config) actor.Behavior {
	return &chatActor{cfg: cfg, members: make(map[int64]struct{})}
}

func (c *chatActor) Receive(ctx *actor.Context) (any, error) {
	switch m := ctx.Message.(type) {
	case ChatJoin:
		c.members[m.PlayerId] = struct{}{}
		return nil, nil
	case ChatLeave:
		delete(c.members, m.PlayerId)
		// 空频道卸载，历史随实例丢弃
		if len(c.members) == 0 {
			ctx.DeactivateOnIdle()
		}
		return nil, nil
	case ChatSend:
		c.send(ctx, m)
		return nil, nil
	case ChatGetRecent:
		n := len(c.recent)
		if m.Count > 0 && m.Count < n {
			n = m.Count
		}
		out := make([]msg.S2CChatMessage, n)
		copy(out, c.recent[len(c.recent)-n:])
		return out, nil
	}
	return nil, errors.Errorf("chat actor: unknown message %T", ctx.Message)
}

func (c *chatActor) send(ctx *actor.Context, m ChatSend) {
	// 发言即视为在频道里
	c.members[m.SenderId] = struct{}{}

	cm := msg.S2CChatMessage{
		ChannelId:      ctx.Id(),
		SenderId:       m.SenderId,
		SenderNickname: m.SenderNickname,
		Content:        m.Content,
		Timestamp:      ctx.Now().UnixMilli(),
	}
	c.recent = append(c.recent, cm)
	if len(c.recent) > c.cfg.ChatRecentLimit {
		c.recent = c.recent[len(c.recent)-c.cfg.ChatRecentLimit:]
	}

	id, payload, err := msg.Encode(&cm)
	if err != nil {
		gsgame.GetLogger().Errorf("chat %v: encode message failed: %v", ctx.Id(), err)
		return
	}
	for playerId := range c.members {
		if err = ctx.Send(PlayerRef(playerId), PlayerPushMessage{MsgId: uint16(id), Payload: payload}); err != nil {
			gsgame.GetLogger().Warnf("chat %v: push to player %v failed: %v", ctx.Id(), playerId, err)
		}
	}
}
