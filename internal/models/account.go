package models

import (
	"time"
)

// Account 账号表
// 注意：删除为物理删除（无软删除字段），唯一索引由存储层保证邮箱唯一。
type Account struct {
	ID           uint       `gorm:"primarykey" json:"id"`                  // 主键，创建后不变且不复用
	DisplayName  string     `gorm:"not null" json:"display_name"`          // 昵称
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`     // 邮箱（联系标识）
	PasswordHash string     `gorm:"not null" json:"-"`                     // 密码哈希（不返回给前端）
	Status       string     `gorm:"default:'unverified'" json:"status"`    // 账号状态 unverified/active/blocked
	// VerificationToken 注册时生成，仅在 unverified -> active 的验证成功时清空；
	// 其余状态下保留原值（blocked 账号可能带着过期 token）。
	VerificationToken *string    `gorm:"index" json:"-"`
	LastLoginAt       *time.Time `json:"last_login_at"`          // 最后登录时间（列表排序键）
	CreatedAt         time.Time  `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt         time.Time  `json:"updated_at"`              // 更新时间
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}
