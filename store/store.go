package store

import (
	"errors"
	"time"
)

var (
	// ErrNotFound 键不存在，业务层自行决定是否当作错误
	ErrNotFound = errors.New("gsgame: store key not found")
	// ErrUnavailable 持久化后端不可用，所有后端故障统一归并成这个错误
	ErrUnavailable = errors.New("gsgame: store unavailable")
)

// AccountRecord 账号表记录
type AccountRecord struct {
	Account      string
	PlayerId     int64
	PasswordHash string
	Platform     int32
	CreatedAt    time.Time
	LastLogin    time.Time
}

// LoginLogEntry 登录流水，只追加
type LoginLogEntry struct {
	PlayerId  int64
	GatewayId int32
	IpAddress string
	LoginAt   time.Time
}

// Store 持久化边界
// actor状态按键读写不透明二进制块，账号和登录流水给登录服务用
// 后端故障通过ErrUnavailable（或其包装）暴露给调用方
type Store interface {
	LoadState(key string) ([]byte, error)
	SaveState(key string, blob []byte) error

	GetPlayerIdByAccount(account string) (int64, error)
	CreateAccount(account string, playerId int64, passwordHash string, platform int32) error
	UpdateLastLogin(account string) error
	AppendLoginLog(playerId int64, gatewayId int32, ipAddress string) error
}
