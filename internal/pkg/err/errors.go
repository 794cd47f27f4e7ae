package err

import (
	"net/http"

	"context"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/httpx"
)

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Error     string      `json:"error,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

const (
	CodeOK                = 0
	CodeInternal          = 1000
	CodeNotFound          = 1001
	CodeBadParam          = 1002
	CodeInvalidTransition = 1003 // 当前状态不允许该命令
	CodeInvalidConfig     = 1004 // 时长输入不合法
	CodeUnauthorized      = 1005
	CodeTooManyRequests   = 1006
)

var codeMessage = map[int]string{
	CodeOK:                "ok",
	CodeInternal:          "internal_error",
	CodeNotFound:          "not_found",
	CodeBadParam:          "bad_parameter",
	CodeInvalidTransition: "invalid_transition",
	CodeInvalidConfig:     "invalid_config",
	CodeUnauthorized:      "unauthorized",
	CodeTooManyRequests:   "too_many_requests",
}

// JSON 写入统一的响应格式
func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	write(w, r, Response{Code: code, Message: codeMessage[code], Data: data})
}

// Fail 带错误详情的失败响应；data 可以为空
func Fail(w http.ResponseWriter, r *http.Request, code int, cause error, data interface{}) {
	resp := Response{Code: code, Message: codeMessage[code], Data: data}
	if cause != nil {
		resp.Error = cause.Error()
	}
	write(w, r, resp)
}

func write(w http.ResponseWriter, r *http.Request, resp Response) {
	resp.RequestID = RequestIDFromContext(r.Context())
	httpx.WriteJSON(w, HTTPStatus(resp.Code), resp)
}

// HTTPStatus 业务码对应的 HTTP 状态码
func HTTPStatus(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeBadParam, CodeInvalidConfig:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTransition:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// 用于请求 ID
type ctxKey string

const requestIDKey ctxKey = "request_id"

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
