package shared

import (
	"github.com/userhub/internal/http/response"
	"github.com/userhub/internal/models"

	"github.com/gin-gonic/gin"
)

// CurrentAccountID 从上下文读取已鉴权账号 ID，缺失时统一返回 401。
func CurrentAccountID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("account_id")
	if !exists {
		RespondError(c, response.CodeUnauthorized, "authentication required", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok || id == 0 {
		RespondError(c, response.CodeUnauthorized, "authentication required", nil)
		return 0, false
	}
	return id, true
}

// CurrentAccount 从上下文读取鉴权中间件写入的账号快照。
func CurrentAccount(c *gin.Context) (*models.Account, bool) {
	value, exists := c.Get("account")
	if !exists {
		RespondError(c, response.CodeUnauthorized, "authentication required", nil)
		return nil, false
	}
	account, ok := value.(*models.Account)
	if !ok || account == nil {
		RespondError(c, response.CodeUnauthorized, "authentication required", nil)
		return nil, false
	}
	return account, true
}
