package actor

import "errors"

var (
	ErrKindNotRegistered = errors.New("gsgame: actor kind not registered")
	ErrRuntimeClosed     = errors.New("gsgame: actor runtime closed")
	ErrInboxFull         = errors.New("gsgame: actor inbox full")
	ErrRequestTimeout    = errors.New("gsgame: actor request timeout")
	ErrActivateFailed    = errors.New("gsgame: actor activation failed")
	ErrSelfRequest       = errors.New("gsgame: non-reentrant actor cannot request itself")

	// errDeactivating 内部错误，getOrActivate等旧实例卸载后重试
	errDeactivating = errors.New("gsgame: actor deactivating")
)
