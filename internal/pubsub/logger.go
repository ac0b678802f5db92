package pubsub

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/shopfront/shopfront/internal/logger"
)

// LoggerAdapter routes watermill's logs through the application logger
type LoggerAdapter struct {
	logger *logger.Logger
}

var _ watermill.LoggerAdapter = (*LoggerAdapter)(nil)

func NewLoggerAdapter(logger *logger.Logger) *LoggerAdapter {
	return &LoggerAdapter{logger: logger}
}

func (a *LoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Errorw(msg, append(flatten(fields), "error", err)...)
}

func (a *LoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Infow(msg, flatten(fields)...)
}

func (a *LoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debugw(msg, flatten(fields)...)
}

// Trace is logged at debug level, zap has nothing finer
func (a *LoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debugw(msg, flatten(fields)...)
}

func (a *LoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LoggerAdapter{logger: a.logger.With(flatten(fields)...)}
}

func flatten(fields watermill.LogFields) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
