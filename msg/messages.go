package msg

// 消息结构定义，字段顺序和含义是线上协议的一部分
// 默认用msgpack编码，见msg/codec

type C2SLogin struct {
	Account  string `msgpack:"account"`
	Token    string `msgpack:"token"`
	Platform int32  `msgpack:"platform"`
}

type S2CLogin struct {
	ErrorCode int32  `msgpack:"error_code"`
	PlayerId  int64  `msgpack:"player_id"`
	Nickname  string `msgpack:"nickname"`
}

type C2SEnterRoom struct {
	RoomId int64 `msgpack:"room_id"`
}

type S2CEnterRoom struct {
	ErrorCode int32 `msgpack:"error_code"`
	RoomId    int64 `msgpack:"room_id"`
}

type C2SPlayerAction struct {
	ActionType int32 `msgpack:"action_type"`
	ActionData int32 `msgpack:"action_data"`
}

type S2CPlayerAction struct {
	PlayerId   int64 `msgpack:"player_id"`
	ActionType int32 `msgpack:"action_type"`
	ActionData int32 `msgpack:"action_data"`
}

type ItemInfo struct {
	ItemId int32 `msgpack:"item_id"`
	Count  int32 `msgpack:"count"`
}

type S2CPlayerInfo struct {
	PlayerId int64  `msgpack:"player_id"`
	Nickname string `msgpack:"nickname"`
	Level    int32  `msgpack:"level"`
	Exp      int64  `msgpack:"exp"`
}

type S2CBagInfo struct {
	Items []ItemInfo `msgpack:"items"`
}

type FrameInput struct {
	PlayerId   int64 `msgpack:"player_id"`
	ActionType int32 `msgpack:"action_type"`
	ActionData int32 `msgpack:"action_data"`
}

type S2CFrameData struct {
	FrameId int32        `msgpack:"frame_id"`
	Inputs  []FrameInput `msgpack:"inputs"`
}

type C2SRequestMatch struct {
	MatchType string `msgpack:"match_type"`
	Rating    int32  `msgpack:"rating"`
}

// S2CMatchResult RoomId为0表示仍在匹配中
type S2CMatchResult struct {
	ErrorCode int32 `msgpack:"error_code"`
	RoomId    int64 `msgpack:"room_id"`
}

type C2SSendChat struct {
	ChannelId string `msgpack:"channel_id"`
	Content   string `msgpack:"content"`
}

type S2CChatMessage struct {
	ChannelId      string `msgpack:"channel_id"`
	SenderId       int64  `msgpack:"sender_id"`
	SenderNickname string `msgpack:"sender_nickname"`
	Content        string `msgpack:"content"`
	Timestamp      int64  `msgpack:"timestamp"`
}

type C2SGetRank struct {
	RankType   string `msgpack:"rank_type"`
	StartIndex int32  `msgpack:"start_index"`
	Count      int32  `msgpack:"count"`
}

type RankEntry struct {
	Rank     int32  `msgpack:"rank"`
	PlayerId int64  `msgpack:"player_id"`
	Nickname string `msgpack:"nickname"`
	Score    int64  `msgpack:"score"`
}

type S2CRankList struct {
	RankType string      `msgpack:"rank_type"`
	Entries  []RankEntry `msgpack:"entries"`
}

type C2SCreateOrder struct {
	ProductId string `msgpack:"product_id"`
}

type S2COrderResult struct {
	ErrorCode int32  `msgpack:"error_code"`
	OrderId   string `msgpack:"order_id"`
	ProductId string `msgpack:"product_id"`
	Status    int32  `msgpack:"status"`
}

type C2SHeartbeat struct {
	ClientTimestamp int64 `msgpack:"client_timestamp"`
}

type S2CHeartbeat struct {
	ServerTimestamp int64 `msgpack:"server_timestamp"`
}
