// Package game 游戏业务actor，全部构建在actor运行时的契约之上
package game

import (
	"time"

	"github.com/huoshan017/gsgame/actor"
)

// actor kind名字
const (
	KindLogin   = "login"
	KindPlayer  = "player"
	KindRoom    = "room"
	KindMatch   = "match"
	KindChat    = "chat"
	KindRank    = "rank"
	KindPayment = "payment"
)

// DefaultMatchType 匹配类型未指定时的默认队列
const DefaultMatchType = "default"

func LoginRef(account string) actor.Ref {
	return actor.NewRef(KindLogin, account)
}

func PlayerRef(playerId int64) actor.Ref {
	return actor.NewIntRef(KindPlayer, playerId)
}

func RoomRef(roomId int64) actor.Ref {
	return actor.NewIntRef(KindRoom, roomId)
}

func MatchRef(matchType string) actor.Ref {
	if matchType == "" {
		matchType = DefaultMatchType
	}
	return actor.NewRef(KindMatch, matchType)
}

func ChatRef(channelId string) actor.Ref {
	return actor.NewRef(KindChat, channelId)
}

func RankRef(rankType string) actor.Ref {
	return actor.NewRef(KindRank, rankType)
}

func PaymentRef(shard string) actor.Ref {
	return actor.NewRef(KindPayment, shard)
}

// Config 业务参数，全部外部注入
type Config struct {
	RoomMaxPlayers       int32
	MatchRatingThreshold int32
	MatchScanInterval    time.Duration
	DefaultFrameRate     int32
	ChatRecentLimit      int
	PlayerIdleTimeout    time.Duration
	RoomIdleTimeout      time.Duration
	ChatIdleTimeout      time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		RoomMaxPlayers:       10,
		MatchRatingThreshold: 100,
		MatchScanInterval:    3 * time.Second,
		DefaultFrameRate:     15,
		ChatRecentLimit:      100,
		PlayerIdleTimeout:    5 * time.Minute,
		RoomIdleTimeout:      10 * time.Minute,
		ChatIdleTimeout:      10 * time.Minute,
	}
}

// RegisterKinds 把所有业务kind注册到运行时
// login/player/room/match标记为可重入，它们在处理调用期间会调用别的actor，
// 等待期间需要保持响应避免相互等待
func RegisterKinds(rt *actor.Runtime, cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rt.RegisterKind(KindLogin, func() actor.Behavior {
		return newLoginActor(cfg)
	}, actor.Reentrant())
	rt.RegisterKind(KindPlayer, func() actor.Behavior {
		return newPlayerActor(cfg)
	}, actor.Reentrant(), actor.WithKindIdleTimeout(cfg.PlayerIdleTimeout))
	rt.RegisterKind(KindRoom, func() actor.Behavior {
		return newRoomActor(cfg)
	}, actor.Reentrant(), actor.WithKindIdleTimeout(cfg.RoomIdleTimeout))
	rt.RegisterKind(KindMatch, func() actor.Behavior {
		return newMatchActor(cfg)
	}, actor.Reentrant())
	rt.RegisterKind(KindChat, func() actor.Behavior {
		return newChatActor(cfg)
	}, actor.WithKindIdleTimeout(cfg.ChatIdleTimeout))
	rt.RegisterKind(KindRank, func() actor.Behavior {
		return newRankActor()
	})
	rt.RegisterKind(KindPayment, func() actor.Behavior {
		return newPaymentActor()
	})
}
