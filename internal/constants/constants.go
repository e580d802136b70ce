package constants

// 账号状态常量
const (
	AccountStatusUnverified = "unverified"
	AccountStatusActive     = "active"
	AccountStatusBlocked    = "blocked"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskVerificationEmail = "account:verification_email"
)
