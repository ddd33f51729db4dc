package gsgame

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 日志接口，各子包通过GetLogger获取
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Sync() error
}

var gslog Logger

func GetLogger() Logger {
	if gslog == nil {
		SetLogger(newDefaultLogger())
	}
	return gslog
}

func SetLogger(logger Logger) {
	gslog = logger
}

type defaultLog struct {
	sugar *zap.SugaredLogger
}

func newDefaultLogger() *defaultLog {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		logger = zap.NewNop()
	}
	return &defaultLog{sugar: logger.Sugar()}
}

// NewZapLogger 用外部的zap.Logger包装成Logger
func NewZapLogger(l *zap.Logger) Logger {
	return &defaultLog{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (l *defaultLog) Debugf(format string, args ...any) {
	l.sugar.Debugf(format, args...)
}

func (l *defaultLog) Infof(format string, args ...any) {
	l.sugar.Infof(format, args...)
}

func (l *defaultLog) Warnf(format string, args ...any) {
	l.sugar.Warnf(format, args...)
}

func (l *defaultLog) Errorf(format string, args ...any) {
	l.sugar.Errorf(format, args...)
}

func (l *defaultLog) Fatalf(format string, args ...any) {
	l.sugar.Fatalf(format, args...)
}

func (l *defaultLog) Sync() error {
	return l.sugar.Sync()
}
