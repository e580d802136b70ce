package queue

import (
	"encoding/json"

	"github.com/userhub/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVerificationEmail 账号验证邮件任务
	TaskVerificationEmail = constants.TaskVerificationEmail
)

// VerificationEmailPayload 验证邮件任务载荷
type VerificationEmailPayload struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

// NewVerificationEmailTask 创建验证邮件任务
func NewVerificationEmailTask(payload VerificationEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerificationEmail, body), nil
}
