package service

import "errors"

// 业务哨兵错误，由 handler 层映射为对外状态码
var (
	ErrNameRequired     = errors.New("display name is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrEmailExists      = errors.New("email already in use")

	// ErrInvalidCredentials 同时覆盖「账号不存在」与「密码错误」，
	// 两种情况对外不可区分。
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountBlocked     = errors.New("account is blocked")

	ErrVerifyTokenInvalid = errors.New("invalid verification token")
	ErrNotFound           = errors.New("account not found")

	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("recipient address rejected")
)
