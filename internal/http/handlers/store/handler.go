package store

import "github.com/store-next/internal/provider"

// Handler 商店 API 处理器入口
type Handler struct {
	*provider.Container
}

// New 创建商店处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
