package provider

import (
	"github.com/fitmarket-next/internal/authz"
	"github.com/fitmarket-next/internal/cache"
	"github.com/fitmarket-next/internal/config"
	"github.com/fitmarket-next/internal/logger"
	"github.com/fitmarket-next/internal/models"
	"github.com/fitmarket-next/internal/queue"
	"github.com/fitmarket-next/internal/repository"
	"github.com/fitmarket-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ManagerRepo  repository.ManagerRepository
	UserRepo     repository.UserRepository
	OrderRepo    repository.OrderRepository
	DeliveryRepo repository.DeliveryRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserAuthService *service.UserAuthService
	DeliveryService *service.DeliveryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ManagerRepo = repository.NewManagerRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.DeliveryRepo = repository.NewDeliveryRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.ManagerRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.DeliveryService = service.NewDeliveryService(c.DeliveryRepo, c.OrderRepo, c.QueueClient, service.DeliveryServiceOptions{
		DisputeMinChars:    c.Config.Delivery.DisputeMinChars,
		RescheduleMinChars: c.Config.Delivery.RescheduleMinChars,
		DefaultPageSize:    c.Config.Delivery.DefaultPageSize,
		MaxPageSize:        c.Config.Delivery.MaxPageSize,
		AckTTLSeconds:      c.Config.Delivery.AckTTLSeconds,
		BadgeTTLSeconds:    c.Config.Delivery.BadgeTTLSeconds,
	})
}
