package engine

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	logger    atomic.Pointer[zap.Logger]
	nopLogger = zap.NewNop()
)

// Logger returns the engine's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return nopLogger
}

// SetLogger configures the engine package's logger. It is safe to call
// while heaps are being created. nil restores the no-op logger.
// Heaps created with a nil HeapConfig.Logger use it.
func SetLogger(l *zap.Logger) {
	logger.Store(l)
}
