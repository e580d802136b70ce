package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/userhub/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicateEmail 邮箱唯一索引冲突
// 由存储层唯一索引保证，应用层不做先查后插。
var ErrDuplicateEmail = errors.New("duplicate email")

// AccountRepository 账号数据访问接口
type AccountRepository interface {
	GetByEmail(email string) (*models.Account, error)
	GetByID(id uint) (*models.Account, error)
	GetByVerificationToken(token string) (*models.Account, error)
	Create(account *models.Account) error
	UpdateLastLogin(id uint, at time.Time) error
	MarkVerified(id uint) (bool, error)
	BatchUpdateStatus(ids []uint, status string) (int64, error)
	DeleteByIDs(ids []uint) (int64, error)
	DeleteByStatus(status string) (int64, error)
	ListByLastLoginDesc() ([]models.Account, error)
}

// GormAccountRepository GORM 实现
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号仓库
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// GetByEmail 根据邮箱获取账号
func (r *GormAccountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByID 根据 ID 获取账号
func (r *GormAccountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByVerificationToken 根据验证 token 获取账号
func (r *GormAccountRepository) GetByVerificationToken(token string) (*models.Account, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	var account models.Account
	if err := r.db.Where("verification_token = ?", token).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Create 创建账号，唯一索引冲突返回 ErrDuplicateEmail
func (r *GormAccountRepository) Create(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// UpdateLastLogin 更新最后登录时间
func (r *GormAccountRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_at": at,
		"updated_at":    at,
	}).Error
}

// MarkVerified 将 unverified 账号置为 active 并清空验证 token。
// 条件更新保证只有 unverified 状态会被改写；返回是否有行被更新。
func (r *GormAccountRepository) MarkVerified(id uint) (bool, error) {
	result := r.db.Model(&models.Account{}).
		Where("id = ? AND status = ?", id, "unverified").
		Updates(map[string]interface{}{
			"status":             "active",
			"verification_token": nil,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// BatchUpdateStatus 批量更新账号状态，返回受影响行数；不存在的 ID 直接跳过
func (r *GormAccountRepository) BatchUpdateStatus(ids []uint, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Account{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByIDs 物理删除指定账号，返回删除行数；不存在的 ID 直接跳过
func (r *GormAccountRepository) DeleteByIDs(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Where("id IN ?", ids).Delete(&models.Account{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByStatus 按状态物理删除账号（单条 DELETE，整体原子），返回删除行数
func (r *GormAccountRepository) DeleteByStatus(status string) (int64, error) {
	result := r.db.Where("status = ?", status).Delete(&models.Account{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListByLastLoginDesc 账号列表，按最后登录时间降序，空值排最后
func (r *GormAccountRepository) ListByLastLoginDesc() ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.Order(lastLoginDescNullsLastExpr(r.db)).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// isDuplicateKeyError 判断是否唯一键冲突。
// TranslateError 已开启，但部分驱动版本仍直接抛原生错误，保留字符串兜底。
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed") ||
		strings.Contains(msg, "duplicate key")
}
