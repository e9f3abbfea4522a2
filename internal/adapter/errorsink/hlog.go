// Package errorsink reports failures that never reach a caller.
package errorsink

import (
	"context"
	"sync/atomic"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// Logger writes every captured error to hlog and counts them.
type Logger struct {
	Component string

	captured atomic.Uint64
}

func (l *Logger) Capture(ctx context.Context, err error) {
	if err == nil {
		return
	}
	l.captured.Add(1)
	component := l.Component
	if component == "" {
		component = "errorsink"
	}
	hlog.CtxErrorf(ctx, "%s: %v", component, err)
}

func (l *Logger) Captured() uint64 {
	return l.captured.Load()
}
