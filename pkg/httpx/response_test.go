package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type conflictError struct{}

func (conflictError) Error() string   { return "conflict" }
func (conflictError) HTTPStatus() int { return http.StatusConflict }

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusFromError(nil))
	assert.Equal(t, http.StatusBadRequest, StatusFromError(errors.New("plain")))
	assert.Equal(t, http.StatusConflict, StatusFromError(fmt.Errorf("wrapped: %w", conflictError{})))
}

func TestWriteObject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	WriteObject(c, gin.H{"success": false}, conflictError{})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Content-Type", "application/x-protobuf")
	WriteObject(c, wrapperspb.String("ok"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-protobuf", w.Header().Get("Content-Type"))
}

func TestWriteObjectProtobufFromPlainObject(t *testing.T) {
	gin.SetMode(gin.TestMode)

	type envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Content-Type", "application/x-protobuf")
	WriteObject(c, envelope{Success: false, Message: "conflict"}, conflictError{})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/x-protobuf", w.Header().Get("Content-Type"))

	var got structpb.Value
	require.NoError(t, proto.Unmarshal(w.Body.Bytes(), &got))
	fields := got.GetStructValue().GetFields()
	assert.False(t, fields["success"].GetBoolValue())
	assert.Equal(t, "conflict", fields["message"].GetStringValue())
}
