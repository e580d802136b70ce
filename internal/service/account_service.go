package service

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/userhub/internal/config"
	"github.com/userhub/internal/constants"
	"github.com/userhub/internal/logger"
	"github.com/userhub/internal/models"
	"github.com/userhub/internal/queue"
	"github.com/userhub/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AccountService 账号生命周期服务
type AccountService struct {
	cfg          *config.Config
	repo         repository.AccountRepository
	emailService *EmailService
	queueClient  *queue.Client
}

// NewAccountService 创建账号服务
func NewAccountService(cfg *config.Config, repo repository.AccountRepository, emailService *EmailService, queueClient *queue.Client) *AccountService {
	return &AccountService{
		cfg:          cfg,
		repo:         repo,
		emailService: emailService,
		queueClient:  queueClient,
	}
}

// AccountJWTClaims 会话 JWT 声明
type AccountJWTClaims struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// BatchResult 批量操作结果
type BatchResult struct {
	Affected     int64
	SelfAffected bool
}

// Register 注册新账号。
// 邮箱唯一性完全依赖存储层唯一索引，不做先查后插，
// 冲突时对外只暴露「邮箱已被占用」，不泄露冲突账号的状态。
func (s *AccountService) Register(displayName, email, password string) (*models.Account, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(password) == "" {
		return nil, ErrPasswordRequired
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	now := time.Now()
	account := &models.Account{
		DisplayName:       name,
		Email:             normalized,
		PasswordHash:      string(hashedPassword),
		Status:            constants.AccountStatusUnverified,
		VerificationToken: &token,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	s.dispatchVerificationEmail(account.ID, normalized, token)

	return account, nil
}

// Login 账号登录。
// 账号不存在与密码错误返回同一个错误；blocked 在密码比对之前拦截；
// unverified 允许登录。
func (s *AccountService) Login(email, password string) (*models.Account, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	account, err := s.repo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if account == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if account.Status == constants.AccountStatusBlocked {
		return nil, "", time.Time{}, ErrAccountBlocked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(account, 0)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(account.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	account.LastLoginAt = &now

	return account, token, expiresAt, nil
}

// Verify 通过验证 token 激活账号。
// 只有 unverified 账号会发生状态迁移；active/blocked 不做任何改写，
// 返回 activated=false 由调用方提示「已验证或状态未变」。
func (s *AccountService) Verify(token string) (*models.Account, bool, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, false, ErrVerifyTokenInvalid
	}
	account, err := s.repo.GetByVerificationToken(trimmed)
	if err != nil {
		return nil, false, err
	}
	if account == nil {
		return nil, false, ErrVerifyTokenInvalid
	}

	activated, err := s.repo.MarkVerified(account.ID)
	if err != nil {
		return nil, false, err
	}
	if !activated {
		return account, false, nil
	}

	refreshed, err := s.repo.GetByID(account.ID)
	if err != nil {
		return nil, false, err
	}
	if refreshed == nil {
		return account, true, nil
	}
	return refreshed, true, nil
}

// ListAccounts 账号列表，最后登录时间降序，从未登录的排最后
func (s *AccountService) ListAccounts() ([]models.Account, error) {
	return s.repo.ListByLastLoginDesc()
}

// BlockAccounts 批量封禁
func (s *AccountService) BlockAccounts(ids []uint, actorID uint) (BatchResult, error) {
	affected, err := s.repo.BatchUpdateStatus(ids, constants.AccountStatusBlocked)
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Affected: affected, SelfAffected: containsID(ids, actorID)}, nil
}

// UnblockAccounts 批量解封，解封后的账号回到 active
func (s *AccountService) UnblockAccounts(ids []uint, actorID uint) (BatchResult, error) {
	affected, err := s.repo.BatchUpdateStatus(ids, constants.AccountStatusActive)
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Affected: affected, SelfAffected: containsID(ids, actorID)}, nil
}

// DeleteAccounts 批量物理删除
func (s *AccountService) DeleteAccounts(ids []uint, actorID uint) (BatchResult, error) {
	affected, err := s.repo.DeleteByIDs(ids)
	if err != nil {
		return BatchResult{}, err
	}
	return BatchResult{Affected: affected, SelfAffected: containsID(ids, actorID)}, nil
}

// PurgeUnverified 清理所有未验证账号。
// 操作者自己未验证时也会被删掉，selfAffected 据此上报。
func (s *AccountService) PurgeUnverified(actor *models.Account) (BatchResult, error) {
	affected, err := s.repo.DeleteByStatus(constants.AccountStatusUnverified)
	if err != nil {
		return BatchResult{}, err
	}
	selfAffected := actor != nil && actor.Status == constants.AccountStatusUnverified
	return BatchResult{Affected: affected, SelfAffected: selfAffected}, nil
}

// GetAccountByID 获取账号
func (s *AccountService) GetAccountByID(id uint) (*models.Account, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(id)
}

// GenerateJWT 签发会话 JWT
func (s *AccountService) GenerateJWT(account *models.Account, expireHours int) (string, time.Time, error) {
	resolvedHours := expireHours
	if resolvedHours <= 0 {
		resolvedHours = resolveJWTExpireHours(s.cfg.JWT)
	}
	expiresAt := time.Now().Add(time.Duration(resolvedHours) * time.Hour)
	claims := AccountJWTClaims{
		AccountID: account.ID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析会话 JWT
func (s *AccountService) ParseJWT(tokenString string) (*AccountJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &AccountJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*AccountJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("无效的 token")
}

// dispatchVerificationEmail 验证邮件分发，至多尝试一次。
// 队列开启时入队（MaxRetry 0），否则起协程直发；
// 任何失败只记日志，绝不影响注册响应。
func (s *AccountService) dispatchVerificationEmail(accountID uint, email, token string) {
	payload := queue.VerificationEmailPayload{
		AccountID: accountID,
		Email:     email,
		Token:     token,
	}
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueVerificationEmail(payload); err != nil {
			logger.Warnw("verification_email_enqueue_failed",
				"account_id", accountID,
				"error", err,
			)
		}
		return
	}
	if s.emailService == nil {
		logger.Warnw("verification_email_skipped_no_sender", "account_id", accountID)
		return
	}
	go func() {
		if err := s.emailService.SendVerificationLink(email, token); err != nil {
			logger.Warnw("verification_email_send_failed",
				"account_id", accountID,
				"error", err,
			)
		}
	}()
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}

func containsID(ids []uint, target uint) bool {
	if target == 0 {
		return false
	}
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
