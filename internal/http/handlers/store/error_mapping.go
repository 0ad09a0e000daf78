package store

import (
	"errors"
	"net/http"

	"github.com/store-next/internal/logger"
	"github.com/store-next/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError 将服务层错误映射为 HTTP 响应。
// 校验错误返回 400，响应体为 字段名 -> 文案 的映射；
// 记录不存在返回 404 空响应体；其余按 500 处理。
func respondServiceError(c *gin.Context, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, ve.Fields)
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	logger.Errorw("request_failed",
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"error", err,
	)
	c.Status(http.StatusInternalServerError)
}

// respondFieldError 以单字段错误返回 400
func respondFieldError(c *gin.Context, field, message string) {
	c.JSON(http.StatusBadRequest, gin.H{field: message})
}
