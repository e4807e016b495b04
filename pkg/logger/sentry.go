package logger

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitSentry enables error reporting. An empty DSN leaves reporting off and
// Report only logs.
func InitSentry(dsn, env string) error {
	if dsn == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      env,
		AttachStacktrace: true,
	}); err != nil {
		return err
	}
	mu.Lock()
	hub = sentry.CurrentHub()
	mu.Unlock()
	return nil
}

// FlushSentry waits for buffered events before shutdown.
func FlushSentry(timeout time.Duration) {
	mu.RLock()
	h := hub
	mu.RUnlock()
	if h != nil {
		h.Flush(timeout)
	}
}

// Report logs err at error level and forwards it to Sentry with the fields as extras.
// It is meant for failures that are swallowed and need someone to look at them later.
func Report(err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}
	Error(msg, append(fields, zap.Error(err))...)

	mu.RLock()
	h := hub
	mu.RUnlock()
	if h == nil {
		return
	}

	h.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("message", msg)
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}
		for k, v := range enc.Fields {
			scope.SetExtra(k, v)
		}
		h.CaptureException(err)
	})
}
