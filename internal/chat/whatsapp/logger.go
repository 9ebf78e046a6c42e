package whatsapp

import (
	"go.uber.org/zap"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// zapLogger routes the client library's printf-style logging into zap.
type zapLogger struct {
	log *zap.SugaredLogger
}

func newLogger(log *zap.Logger) waLog.Logger {
	return &zapLogger{log: log.Sugar()}
}

func (l *zapLogger) Debugf(msg string, args ...interface{}) { l.log.Debugf(msg, args...) }
func (l *zapLogger) Infof(msg string, args ...interface{})  { l.log.Infof(msg, args...) }
func (l *zapLogger) Warnf(msg string, args ...interface{})  { l.log.Warnf(msg, args...) }
func (l *zapLogger) Errorf(msg string, args ...interface{}) { l.log.Errorf(msg, args...) }

func (l *zapLogger) Sub(module string) waLog.Logger {
	return &zapLogger{log: l.log.Named(module)}
}
