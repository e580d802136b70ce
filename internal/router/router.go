package router

import (
	"context"
	"time"

	"github.com/userhub/internal/cache"
	"github.com/userhub/internal/config"
	adminhandlers "github.com/userhub/internal/http/handlers/admin"
	publichandlers "github.com/userhub/internal/http/handlers/public"
	"github.com/userhub/internal/logger"
	"github.com/userhub/internal/models"
	"github.com/userhub/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 认证接口（无需会话）
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.Register)
			auth.POST("/login", publicHandler.Login)
			auth.GET("/verify/:token", publicHandler.Verify)
		}

		// 账号管理接口（需鉴权，逐请求回源校验账号状态）
		accounts := apiV1.Group("/accounts")
		accounts.Use(AuthMiddleware(cfg.JWT.SecretKey, c.AccountRepo))
		{
			accounts.GET("", adminHandler.ListAccounts)
			accounts.POST("/block", adminHandler.BlockAccounts)
			accounts.POST("/unblock", adminHandler.UnblockAccounts)
			accounts.POST("/delete", adminHandler.DeleteAccounts)
			accounts.POST("/purge-unverified", adminHandler.PurgeUnverified)
		}
	}

	// 健康检查（含组件状态）
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "ok",
			"components": buildComponentStatus(c.Request.Context(), cfg),
		})
	})

	return r
}

func buildComponentStatus(ctx context.Context, cfg *config.Config) gin.H {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	if models.DB == nil {
		dbStatus = "uninitialized"
	} else if sqlDB, err := models.DB.DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.PingContext(pingCtx); err != nil {
		dbStatus = "error"
	}

	redisStatus := "disabled"
	if cache.Enabled() {
		redisStatus = "ok"
		if err := cache.Ping(pingCtx); err != nil {
			redisStatus = "error"
		}
	}

	queueStatus := "disabled"
	if cfg != nil && cfg.Queue.Enabled {
		queueStatus = "ok"
	}

	return gin.H{
		"database": dbStatus,
		"redis":    redisStatus,
		"queue":    queueStatus,
	}
}
