package game

import (
	"sort"

	gsgame "github.com/huoshan017/gsgame"
	"github.com/huoshan017/gsgame/actor"
	"github.com/huoshan017/gsgame/msg"
	"github.com/huoshan017/gsgame/store"
	"github.com/pkg/errors"
)

// 排行榜actor的调用消息，actor按榜单类型分键
type (
	RankUpdateScore struct {
		PlayerId int64
		Nickname string
		Score    int64
	}
	// RankGetList 分页查询，回复*msg.S2CRankList
	RankGetList struct {
		StartIndex int32
		Count      int32
	}
	// RankGetPlayerRank 回复int32名次，不在榜上回复0
	RankGetPlayerRank struct {
		PlayerId int64
	}
)

type rankScore struct {
	PlayerId int64  `msgpack:"player_id"`
	Nickname string `msgpack:"nickname"`
	Score    int64  `msgpack:"score"`
}

type rankState struct {
	Scores []rankScore `msgpack:"scores"`
}

type rankActor struct {
	state rankState
	// 玩家ID到Scores下标
	index map[int64]int
}

func newRankActor() actor.Behavior {
	return &rankActor{index: make(map[int64]int)}
}

func (r *rankActor) OnActivate(ctx *actor.Context) error {
	if err := ctx.ReadState(&r.state); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	for i, s := range r.state.Scores {
		r.index[s.PlayerId] = i
	}
	return nil
}

func (r *rankActor) OnDeactivate(ctx *actor.Context) {
	if err := ctx.WriteState(&r.state); err != nil {
		gsgame.GetLogger().Errorf("rank %v: flush state on deactivate failed: %v", ctx.Id(), err)
	}
}

func (r *rankActor) Receive(ctx *actor.Context) (any, error) {
	switch m := ctx.Message.(type) {
	case RankUpdateScore:
		return nil, r.update(ctx, m)
	case RankGetList:
		return r.list(ctx, m), nil
	case RankGetPlayerRank:
		return r.playerRank(m.PlayerId), nil
	}
	return nil, errors.Errorf("rank actor: unknown message %T", ctx.Message)
}

func (r *rankActor) update(ctx *actor.Context, m RankUpdateScore) error {
	if i, ok := r.index[m.PlayerId]; ok {
		r.state.Scores[i].Score = m.Score
		if m.Nickname != "" {
			r.state.Scores[i].Nickname = m.Nickname
		}
	} else {
		r.index[m.PlayerId] = len(r.state.Scores)
		r.state.Scores = append(r.state.Scores, rankScore{
			PlayerId: m.PlayerId,
			Nickname: m.Nickname,
			Score:    m.Score,
		})
	}
	return ctx.WriteState(&r.state)
}

// list 查询时排序，分数降序，同分按玩家ID升序保证稳定名次
func (r *rankActor) list(ctx *actor.Context, m RankGetList) *msg.S2CRankList {
	sorted := make([]rankScore, len(r.state.Scores))
	copy(sorted, r.state.Scores)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].PlayerId < sorted[j].PlayerId
	})

	start := int(m.StartIndex)
	count := int(m.Count)
	if start < 0 {
		start = 0
	}
	if count <= 0 {
		count = 10
	}
	if start > len(sorted) {
		start = len(sorted)
	}
	end := start + count
	if end > len(sorted) {
		end = len(sorted)
	}

	entries := make([]msg.RankEntry, 0, end-start)
	for i := start; i < end; i++ {
		entries = append(entries, msg.RankEntry{
			Rank:     int32(i + 1),
			PlayerId: sorted[i].PlayerId,
			Nickname: sorted[i].Nickname,
			Score:    sorted[i].Score,
		})
	}
	return &msg.S2CRankList{RankType: ctx.Id(), Entries: entries}
}

func (r *rankActor) playerRank(playerId int64) int32 {
	target, ok := r.index[playerId]
	if !ok {
		return 0
	}
	score := r.state.Scores[target].Score
	rank := int32(1)
	for _, s := range r.state.Scores {
		if s.Score > score || (s.Score == score && s.PlayerId < playerId) {
			rank++
		}
	}
	return rank
}
