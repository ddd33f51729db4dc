package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/huoshan017/gsgame/msg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatFanout(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())

	obsA, obsB := &testObserver{}, &testObserver{}
	require.NoError(t, rt.Send(PlayerRef(1), PlayerSubscribe{Observer: obsA}))
	require.NoError(t, rt.Send(PlayerRef(2), PlayerSubscribe{Observer: obsB}))

	require.NoError(t, rt.Send(ChatRef("world"), ChatJoin{PlayerId: 1}))
	require.NoError(t, rt.Send(ChatRef("world"), ChatJoin{PlayerId: 2}))
	require.NoError(t, rt.Send(ChatRef("world"), ChatSend{
		SenderId:       1,
		SenderNickname: "Alice",
		Content:        "hello",
	}))

	// 发送者和其他成员都收到
	for _, obs := range []*testObserver{obsA, obsB} {
		require.Eventually(t, func() bool {
			msgs := decodedPushes[msg.S2CChatMessage](t, obs, msg.MsgIdS2CChatMessage)
			return len(msgs) == 1 && msgs[0].Content == "hello" &&
				msgs[0].SenderNickname == "Alice" && msgs[0].ChannelId == "world"
		}, 2*time.Second, 10*time.Millisecond)
	}
}

func TestChatRecentHistoryBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChatRecentLimit = 5
	rt, _ := newGameRuntime(t, cfg)

	for i := 0; i < 8; i++ {
		require.NoError(t, rt.Send(ChatRef("ch"), ChatSend{
			SenderId: 1,
			Content:  fmt.Sprintf("msg-%d", i),
		}))
	}

	res, err := rt.Request(ChatRef("ch"), ChatGetRecent{})
	require.NoError(t, err)
	recent := res.([]msg.S2CChatMessage)
	require.Len(t, recent, 5)
	// 保留的是最近5条
	assert.Equal(t, "msg-3", recent[0].Content)
	assert.Equal(t, "msg-7", recent[4].Content)

	// 带条数时取最近的N条
	res, err = rt.Request(ChatRef("ch"), ChatGetRecent{Count: 2})
	require.NoError(t, err)
	limited := res.([]msg.S2CChatMessage)
	require.Len(t, limited, 2)
	assert.Equal(t, "msg-6", limited[0].Content)
	assert.Equal(t, "msg-7", limited[1].Content)
}

func TestChatLeaveStopsDelivery(t *testing.T) {
	rt, _ := newGameRuntime(t, DefaultConfig())
	obs := &testObserver{}
	require.NoError(t, rt.Send(PlayerRef(1), PlayerSubscribe{Observer: obs}))

	require.NoError(t, rt.Send(ChatRef("ch2"), ChatJoin{PlayerId: 1}))
	require.NoError(t, rt.Send(ChatRef("ch2"), ChatLeave{PlayerId: 1}))
	require.NoError(t, rt.Send(ChatRef("ch2"), ChatSend{SenderId: 2, Content: "bye"}))

	// 等消息都处理完，退出频道的玩家收不到
	_, err := rt.Request(ChatRef("ch2"), ChatGetRecent{})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, decodedPushes[msg.S2CChatMessage](t, obs, msg.MsgIdS2CChatMessage))
}
