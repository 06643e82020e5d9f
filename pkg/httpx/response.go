package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// StatusCoder 携带HTTP状态码的错误
type StatusCoder interface {
	HTTPStatus() int
}

// StatusFromError 根据错误推导HTTP状态码
func StatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return http.StatusBadRequest
}

// WriteObject 兼容protobuf和json
func WriteObject(c *gin.Context, obj interface{}, err error) {
	status := StatusFromError(err)

	switch c.ContentType() {
	case binding.MIMEPROTOBUF:
		msg, convErr := toProto(obj)
		if convErr != nil {
			c.String(http.StatusInternalServerError, "encode protobuf response: %v", convErr)
			return
		}
		c.ProtoBuf(status, msg)
	default:
		c.JSON(status, obj)
	}
}

// toProto 非proto对象按JSON结构转为 google.protobuf.Value
func toProto(obj interface{}) (proto.Message, error) {
	if msg, ok := obj.(proto.Message); ok {
		return msg, nil
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return structpb.NewValue(generic)
}
