package admin

import (
	"time"

	"github.com/userhub/internal/http/handlers/shared"
	"github.com/userhub/internal/http/response"
	"github.com/userhub/internal/models"
	"github.com/userhub/internal/service"

	"github.com/gin-gonic/gin"
)

// AccountView 账号列表项
type AccountView struct {
	ID          uint       `json:"id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ListAccounts 账号列表，最后登录时间降序，从未登录的排最后
func (h *Handler) ListAccounts(c *gin.Context) {
	accounts, err := h.AccountService.ListAccounts()
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "failed to list accounts", err)
		return
	}

	views := make([]AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, buildAccountView(account))
	}
	response.Success(c, gin.H{
		"accounts": views,
		"total":    len(views),
	})
}

// BatchAccountRequest 批量操作请求
type BatchAccountRequest struct {
	AccountIDs []uint `json:"account_ids" binding:"required"`
}

// BlockAccounts 批量封禁
func (h *Handler) BlockAccounts(c *gin.Context) {
	h.runBatchStatusUpdate(c, "failed to block accounts", h.AccountService.BlockAccounts)
}

// UnblockAccounts 批量解封
func (h *Handler) UnblockAccounts(c *gin.Context) {
	h.runBatchStatusUpdate(c, "failed to unblock accounts", h.AccountService.UnblockAccounts)
}

func (h *Handler) runBatchStatusUpdate(c *gin.Context, failMsg string, op func([]uint, uint) (service.BatchResult, error)) {
	var req BatchAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "account_ids is required", nil)
		return
	}
	actorID, ok := shared.CurrentAccountID(c)
	if !ok {
		return
	}

	result, err := op(req.AccountIDs, actorID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, failMsg, err)
		return
	}

	response.Success(c, gin.H{
		"updated":       result.Affected,
		"self_affected": result.SelfAffected,
	})
}

// DeleteAccounts 批量物理删除
func (h *Handler) DeleteAccounts(c *gin.Context) {
	var req BatchAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondError(c, response.CodeBadRequest, "account_ids is required", nil)
		return
	}
	actorID, ok := shared.CurrentAccountID(c)
	if !ok {
		return
	}

	result, err := h.AccountService.DeleteAccounts(req.AccountIDs, actorID)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "failed to delete accounts", err)
		return
	}

	response.Success(c, gin.H{
		"deleted":       result.Affected,
		"self_affected": result.SelfAffected,
	})
}

// PurgeUnverified 清理全部未验证账号
func (h *Handler) PurgeUnverified(c *gin.Context) {
	actor, ok := shared.CurrentAccount(c)
	if !ok {
		return
	}

	result, err := h.AccountService.PurgeUnverified(actor)
	if err != nil {
		shared.RespondError(c, response.CodeInternal, "failed to purge unverified accounts", err)
		return
	}

	response.Success(c, gin.H{
		"deleted":       result.Affected,
		"self_affected": result.SelfAffected,
	})
}

func buildAccountView(account models.Account) AccountView {
	return AccountView{
		ID:          account.ID,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		Status:      account.Status,
		LastLoginAt: account.LastLoginAt,
		CreatedAt:   account.CreatedAt,
	}
}
