package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Error 业务错误，携带HTTP状态码
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus 实现 httpx.StatusCoder
func (e *Error) HTTPStatus() int {
	return e.Status
}

// PublicMessage 返回可以暴露给调用方的错误信息，内部错误原因只记日志
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

func errBadRequest(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(id string) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("comment %s not found", id)}
}

func errConflict(format string, args ...interface{}) *Error {
	return &Error{Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

func errInternal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}
