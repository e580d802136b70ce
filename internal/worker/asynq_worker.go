package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/userhub/internal/logger"
	"github.com/userhub/internal/provider"
	"github.com/userhub/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVerificationEmail, c.handleVerificationEmail)
}

// handleVerificationEmail 投递验证邮件。
// 投递语义为至多一次：发送失败只记日志并返回 nil，不触发重试。
func (c *Consumer) handleVerificationEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_verification_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.VerificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_verification_email_unmarshal_failed", "error", err)
		return nil
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" || strings.TrimSpace(payload.Token) == "" {
		logger.Debugw("worker_verification_email_skip_invalid_payload", "account_id", payload.AccountID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_verification_email_skip_email_service_nil", "account_id", payload.AccountID)
		return nil
	}
	if err := c.EmailService.SendVerificationLink(email, payload.Token); err != nil {
		logger.Warnw("worker_verification_email_send_failed",
			"account_id", payload.AccountID,
			"error", err,
		)
		return nil
	}
	logger.Infow("worker_verification_email_sent", "account_id", payload.AccountID)
	return nil
}
