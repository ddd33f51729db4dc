package msg

// MsgIdType 消息ID类型，与包头中2字节的消息ID对应
type MsgIdType uint16

// 消息ID按业务分段，已上线的ID永不复用
const (
	// 登录相关 (1001-1999)
	MsgIdC2SLogin MsgIdType = 1001
	MsgIdS2CLogin MsgIdType = 1002

	// 房间相关 (2001-2999)
	MsgIdC2SEnterRoom    MsgIdType = 2001
	MsgIdS2CEnterRoom    MsgIdType = 2002
	MsgIdC2SPlayerAction MsgIdType = 2003
	MsgIdS2CPlayerAction MsgIdType = 2004

	// 玩家信息 (3001-3999)
	MsgIdS2CPlayerInfo MsgIdType = 3001
	MsgIdS2CBagInfo    MsgIdType = 3002

	// 帧同步 (3501-3599)
	MsgIdS2CFrameData MsgIdType = 3501

	// 匹配相关 (4001-4999)
	MsgIdC2SRequestMatch MsgIdType = 4001
	MsgIdS2CMatchResult  MsgIdType = 4002

	// 聊天相关 (4501-4599)
	MsgIdC2SSendChat    MsgIdType = 4501
	MsgIdS2CChatMessage MsgIdType = 4502

	// 排行榜相关 (5001-5999)
	MsgIdC2SGetRank  MsgIdType = 5001
	MsgIdS2CRankList MsgIdType = 5002

	// 支付相关 (6001-6999)
	MsgIdC2SCreateOrder MsgIdType = 6001
	MsgIdS2COrderResult MsgIdType = 6002

	// 系统/心跳 (9001-9999)
	MsgIdC2SHeartbeat MsgIdType = 9001
	MsgIdS2CHeartbeat MsgIdType = 9002
)
