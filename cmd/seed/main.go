package main

import (
	"time"

	"github.com/userhub/internal/config"
	"github.com/userhub/internal/constants"
	"github.com/userhub/internal/logger"
	"github.com/userhub/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// 演示账号，密码统一为 demo-pass-123
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-pass-123"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}

	now := time.Now()
	recentLogin := now.Add(-2 * time.Hour)
	staleLogin := now.AddDate(0, -1, 0)

	accounts := []models.Account{
		{
			DisplayName:  "Ada Admin",
			Email:        "ada@example.com",
			PasswordHash: string(hashed),
			Status:       constants.AccountStatusActive,
			LastLoginAt:  &recentLogin,
		},
		{
			DisplayName:  "Ben Builder",
			Email:        "ben@example.com",
			PasswordHash: string(hashed),
			Status:       constants.AccountStatusActive,
			LastLoginAt:  &staleLogin,
		},
		{
			DisplayName:       "Cara Curious",
			Email:             "cara@example.com",
			PasswordHash:      string(hashed),
			Status:            constants.AccountStatusUnverified,
			VerificationToken: newToken(),
		},
		{
			DisplayName:       "Dan Dormant",
			Email:             "dan@example.com",
			PasswordHash:      string(hashed),
			Status:            constants.AccountStatusUnverified,
			VerificationToken: newToken(),
		},
		{
			DisplayName:  "Eve Evicted",
			Email:        "eve@example.com",
			PasswordHash: string(hashed),
			Status:       constants.AccountStatusBlocked,
			LastLoginAt:  &staleLogin,
		},
	}

	for _, account := range accounts {
		var existing models.Account
		if err := models.DB.Where("email = ?", account.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&account).Error; err != nil {
				stdLog.Printf("Failed to create account %s: %v", account.Email, err)
			} else {
				stdLog.Printf("Created account: %s (%s)", account.Email, account.Status)
			}
		} else {
			stdLog.Printf("Account already exists: %s", account.Email)
		}
	}
}

func newToken() *string {
	token := uuid.NewString()
	return &token
}
