package public

import (
	"errors"

	"github.com/userhub/internal/http/handlers/shared"
	"github.com/userhub/internal/http/response"
	"github.com/userhub/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

// Register 账号注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "display name, email and password are required", nil)
		return
	}

	account, err := h.AccountService.Register(req.DisplayName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired):
			shared.RespondError(c, response.CodeBadRequest, "display name is required", nil)
		case errors.Is(err, service.ErrPasswordRequired):
			shared.RespondError(c, response.CodeBadRequest, "password is required", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			shared.RespondError(c, response.CodeBadRequest, "invalid email address", nil)
		case errors.Is(err, service.ErrEmailExists):
			// 冲突响应不暴露已有账号的任何状态
			shared.RespondError(c, response.CodeConflict, "email already in use", nil)
		default:
			shared.RespondError(c, response.CodeInternal, "registration failed", err)
		}
		return
	}

	response.SuccessWithMsg(c, "registered, verification email sent", gin.H{
		"account": gin.H{
			"id":           account.ID,
			"display_name": account.DisplayName,
			"email":        account.Email,
			"status":       account.Status,
			"created_at":   account.CreatedAt,
		},
	})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 账号登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "email and password are required", nil)
		return
	}

	account, token, expiresAt, err := h.AccountService.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			shared.RespondError(c, response.CodeUnauthorized, "invalid email or password", nil)
		case errors.Is(err, service.ErrAccountBlocked):
			shared.RespondError(c, response.CodeForbidden, "account is blocked", nil)
		default:
			shared.RespondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"account": gin.H{
			"id":            account.ID,
			"display_name":  account.DisplayName,
			"email":         account.Email,
			"status":        account.Status,
			"last_login_at": account.LastLoginAt,
		},
		"token":      token,
		"expires_at": expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// Verify 邮箱验证回跳
func (h *Handler) Verify(c *gin.Context) {
	token := c.Param("token")

	account, activated, err := h.AccountService.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerifyTokenInvalid):
			shared.RespondError(c, response.CodeNotFound, "invalid verification token", nil)
		default:
			shared.RespondError(c, response.CodeInternal, "verification failed", err)
		}
		return
	}

	msg := "account verified"
	if !activated {
		msg = "already verified or status unchanged"
	}
	response.SuccessWithMsg(c, msg, gin.H{
		"account": gin.H{
			"id":     account.ID,
			"email":  account.Email,
			"status": account.Status,
		},
		"activated": activated,
	})
}
