package public

import "github.com/userhub/internal/provider"

// Handler 公开接口处理器入口
// 说明：注册、登录、邮箱验证等无需会话的 API。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
