package store

import (
	"sync"
	"time"

	"github.com/golang/snappy"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
)

// MemStore 进程内存储，单机部署和测试用
// 状态块用snappy压缩后保存，读写路径和真实后端保持一致
type MemStore struct {
	states   cmap.ConcurrentMap
	accounts cmap.ConcurrentMap

	logMu    sync.Mutex
	loginLog []LoginLogEntry

	// 置为true后所有操作返回ErrUnavailable，测试后端故障用
	down bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		states:   cmap.New(),
		accounts: cmap.New(),
	}
}

// SetDown 模拟后端不可用
func (s *MemStore) SetDown(down bool) {
	s.down = down
}

func (s *MemStore) LoadState(key string) ([]byte, error) {
	if s.down {
		return nil, ErrUnavailable
	}
	v, o := s.states.Get(key)
	if !o {
		return nil, ErrNotFound
	}
	blob, err := snappy.Decode(nil, v.([]byte))
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "corrupt state blob for key %v: %v", key, err)
	}
	return blob, nil
}

func (s *MemStore) SaveState(key string, blob []byte) error {
	if s.down {
		return ErrUnavailable
	}
	s.states.Set(key, snappy.Encode(nil, blob))
	return nil
}

func (s *MemStore) GetPlayerIdByAccount(account string) (int64, error) {
	if s.down {
		return 0, ErrUnavailable
	}
	v, o := s.accounts.Get(account)
	if !o {
		return 0, ErrNotFound
	}
	return v.(*AccountRecord).PlayerId, nil
}

func (s *MemStore) CreateAccount(account string, playerId int64, passwordHash string, platform int32) error {
	if s.down {
		return ErrUnavailable
	}
	rec := &AccountRecord{
		Account:      account,
		PlayerId:     playerId,
		PasswordHash: passwordHash,
		Platform:     platform,
		CreatedAt:    time.Now(),
		LastLogin:    time.Now(),
	}
	if !s.accounts.SetIfAbsent(account, rec) {
		return errors.Errorf("gsgame: account %v already exists", account)
	}
	return nil
}

func (s *MemStore) UpdateLastLogin(account string) error {
	if s.down {
		return ErrUnavailable
	}
	v, o := s.accounts.Get(account)
	if !o {
		return ErrNotFound
	}
	v.(*AccountRecord).LastLogin = time.Now()
	return nil
}

func (s *MemStore) AppendLoginLog(playerId int64, gatewayId int32, ipAddress string) error {
	if s.down {
		return ErrUnavailable
	}
	s.logMu.Lock()
	s.loginLog = append(s.loginLog, LoginLogEntry{
		PlayerId:  playerId,
		GatewayId: gatewayId,
		IpAddress: ipAddress,
		LoginAt:   time.Now(),
	})
	s.logMu.Unlock()
	return nil
}

// LoginLogCount 测试用
func (s *MemStore) LoginLogCount() int {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	return len(s.loginLog)
}
