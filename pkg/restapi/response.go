package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-translate-service/pkg/errno"
	"video-translate-service/pkg/logger"
)

// ErrorBody 失败时的响应体
type ErrorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// Success 返回 200 与数据本身
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, data)
}

// Accepted 返回 202，用于异步提交
func Accepted(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusAccepted, data)
}

// Failed 根据错误码返回失败响应; 只暴露 Errno 的通用信息，底层原因只写日志
func Failed(ctx *gin.Context, err error) {
	en := errno.Decode(err)
	status := errno.HTTPStatus(err)
	fields := map[string]interface{}{
		"path":   ctx.FullPath(),
		"status": status,
		"code":   en.Code,
		"error":  errorString(err),
	}
	if rid, ok := ctx.Get("request_id"); ok {
		fields["request_id"] = rid
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields)
	} else {
		logger.Warn("Request rejected", fields)
	}
	ctx.AbortWithStatusJSON(status, ErrorBody{Error: en.Message, Code: en.Code})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
