package logger

import (
	"context"
	"testing"

	kratoslog "github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	tracecontext "blog-moderation/pkg/context"
)

func newObserved(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewZapLogger(zap.New(core)), logs
}

func TestLoggerAddsRequestID(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)
	ctx := tracecontext.WithRequestID(context.Background(), "req-1")

	log.Info(ctx, "comment censored", F("comment_id", "42"))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "42", fields["comment_id"])
}

func TestLoggerLevelFilter(t *testing.T) {
	log, logs := newObserved(zapcore.WarnLevel)
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.Info(ctx, "hidden")
	log.Warn(ctx, "shown")
	log.Error(ctx, "shown")
	assert.Equal(t, 2, logs.Len())
}

func TestWithContext(t *testing.T) {
	log, logs := newObserved(zapcore.InfoLevel)
	ctx := tracecontext.WithUserID(context.Background(), 5)
	ctx = tracecontext.WithServiceInfo(ctx, "comment-admin", "")

	log.WithContext(ctx).Info(context.Background(), "hello")
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(5), fields["user_id"])
	assert.Equal(t, "comment-admin", fields["service"])
}

func TestKratosAdapter(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)
	kl := NewKratosLogger(log)

	require.NoError(t, kl.Log(kratoslog.LevelFatal, "msg", "fatal from framework", "name", "http"))
	require.NoError(t, kl.Log(kratoslog.LevelInfo))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "fatal from framework", entry.Message)
	assert.Equal(t, "http", entry.ContextMap()["name"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}
