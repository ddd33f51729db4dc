package msg

// 业务错误码，作为响应消息的ErrorCode字段返回，不会导致断连
const (
	ErrCodeSuccess      = 0
	ErrCodeCommon       = 1000
	ErrCodeInvalidParam = 1001

	// 登录相关 (1001-1999)
	ErrCodeAccountNotFound      = 1002
	ErrCodePasswordError        = 1003
	ErrCodeAccountAlreadyOnline = 1004

	// 玩家相关 (2001-2999)
	ErrCodePlayerNotFound    = 2001
	ErrCodePlayerNotLoggedIn = 2002

	// 房间相关 (3001-3999)
	ErrCodeRoomNotFound        = 3001
	ErrCodeRoomFull            = 3002
	ErrCodePlayerAlreadyInRoom = 3003
	ErrCodePlayerNotInRoom     = 3004

	// 匹配相关 (4001-4999)
	ErrCodeMatchFailed       = 4001
	ErrCodeAlreadyInQueue    = 4002
	ErrCodeNotInMatchQueue   = 4003
)
