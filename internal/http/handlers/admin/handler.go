package admin

import "github.com/userhub/internal/provider"

// Handler 账号管理接口处理器入口
// 说明：所有路由均位于鉴权中间件之后。
type Handler struct {
	*provider.Container
}

// New 创建管理处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
