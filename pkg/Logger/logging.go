// Package Logger wraps zap behind the one logger type the rest of the
// module passes around.
package Logger

import (
	"go.uber.org/zap"
)

// Logger embeds the sugared API, so call sites use Debugf/Infof/Warnf/
// Errorf directly.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a console development logger when debug is set, a JSON
// production logger otherwise. Logging must never take the process
// down: a build failure falls back to zap's no-op logger.
func New(debug bool) *Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "msg"

	base, err := cfg.Build(zap.AddCaller())
	if err != nil {
		base = zap.NewNop()
	}
	return &Logger{base.Sugar()}
}
