// Package progress defines the narrow logging/progress-reporting seam the
// pipeline calls into, and a zap-backed default implementation.
package progress

import "go.uber.org/zap"

// Reporter receives informational, warning, and progress events from the
// pipeline. Implementations must be safe to call from the goroutines the
// parallel stages of the pipeline spawn (C4.3's crossing check, C6's
// per-cell walker fan-out).
type Reporter interface {
	Info(msg string)
	Warningf(format string, args ...any)
	SetProgress(current, total int)
}

// Zap adapts a *zap.Logger to Reporter.
type Zap struct {
	log *zap.Logger
}

// NewZap wraps log as a Reporter. A nil log uses zap.NewNop().
func NewZap(log *zap.Logger) *Zap {
	if log == nil {
		log = zap.NewNop()
	}
	return &Zap{log: log}
}

func (z *Zap) Info(msg string) { z.log.Info(msg) }

func (z *Zap) Warningf(format string, args ...any) {
	z.log.Sugar().Warnf(format, args...)
}

func (z *Zap) SetProgress(current, total int) {
	z.log.Debug("progress", zap.Int("current", current), zap.Int("total", total))
}

type noop struct{}

func (noop) Info(string)              {}
func (noop) Warningf(string, ...any)  {}
func (noop) SetProgress(int, int)     {}

// NoOp returns a Reporter that discards everything, used in tests and by
// components exercised without a driver.
func NoOp() Reporter { return noop{} }
