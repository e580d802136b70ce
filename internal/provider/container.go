package provider

import (
	"github.com/userhub/internal/cache"
	"github.com/userhub/internal/config"
	"github.com/userhub/internal/logger"
	"github.com/userhub/internal/models"
	"github.com/userhub/internal/queue"
	"github.com/userhub/internal/repository"
	"github.com/userhub/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AccountRepo repository.AccountRepository

	// Services
	EmailService   *service.EmailService
	AccountService *service.AccountService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AccountRepo = repository.NewAccountRepository(db)
}

func (c *Container) initServices() {
	c.EmailService = service.NewEmailService(&c.Config.Email, c.Config.App.BaseURL)
	c.AccountService = service.NewAccountService(c.Config, c.AccountRepo, c.EmailService, c.QueueClient)
}
