package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, int64(0), GetUserID(ctx))
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithUserID(ctx, 42)
	ctx = WithCommentID(ctx, "1001")
	ctx = WithRequestID(ctx, "")
	ctx = WithTraceID(ctx, "trace-1")

	tc := ExtractTraceContext(ctx)
	assert.Equal(t, int64(42), tc.UserID)
	assert.Equal(t, "1001", tc.CommentID)
	assert.NotEmpty(t, tc.RequestID, "empty request id should be generated")
	assert.Equal(t, "trace-1", tc.TraceID)

	m := tc.ToMap()
	assert.Equal(t, int64(42), m["user_id"])
	assert.Equal(t, "1001", m["comment_id"])
}

func TestWithUserIDIgnoresInvalid(t *testing.T) {
	ctx := WithUserID(context.Background(), 0)
	assert.Equal(t, int64(0), GetUserID(ctx))
}
