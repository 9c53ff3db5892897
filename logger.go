package jobly

import (
	"fmt"

	"go.uber.org/zap"
)

type LogLevel int

const (
	LogLevelDev LogLevel = iota
	LogLevelProd
)

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NewLogger builds a zap backed Logger: human readable console output for
// LogLevelDev, JSON at info level for LogLevelProd.
func NewLogger(env LogLevel) (Logger, error) {
	var conf zap.Config
	switch env {
	case LogLevelDev:
		conf = zap.NewDevelopmentConfig()
	case LogLevelProd:
		conf = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log level %d", env)
	}
	l, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.Named("jobly").Sugar(), nil
}

// NopLogger discards everything.
func NopLogger() Logger {
	return zap.NewNop().Sugar()
}

// Sync flushes buffered entries of zap backed loggers.
func Sync(l Logger) error {
	if s, ok := l.(*zap.SugaredLogger); ok {
		return s.Sync()
	}
	return nil
}
