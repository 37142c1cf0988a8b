package core

import "go.uber.org/zap"

// zapLogger adapts a zap sugared logger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps a zap logger for use as the service logger.
func NewZapLogger(l *zap.Logger) Logger {
	return zapLogger{sugar: l.Sugar()}
}

func (z zapLogger) Debug(msg string, kv ...any) { z.sugar.Debugw(msg, kv...) }
func (z zapLogger) Info(msg string, kv ...any)  { z.sugar.Infow(msg, kv...) }
func (z zapLogger) Warn(msg string, kv ...any)  { z.sugar.Warnw(msg, kv...) }
func (z zapLogger) Error(msg string, kv ...any) { z.sugar.Errorw(msg, kv...) }
