package zk

import (
	"github.com/golang/glog"
)

// Logger is used by the client for connection and session lifecycle messages.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// NewGlogLogger returns the default Logger, which writes through glog.
// Messages logged at verbosity level v and above are only shown with -v=v.
func NewGlogLogger(v glog.Level) Logger {
	return &glogLoggerImpl{level: v}
}

type glogLoggerImpl struct {
	level glog.Level
}

func (l *glogLoggerImpl) Infof(format string, args ...any) {
	glog.V(l.level).Infof("[ZK] "+format, args...)
}

func (l *glogLoggerImpl) Warnf(format string, args ...any) {
	glog.Warningf("[ZK] "+format, args...)
}
