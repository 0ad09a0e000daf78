package provider

import (
	"github.com/store-next/internal/cache"
	"github.com/store-next/internal/config"
	"github.com/store-next/internal/logger"
	"github.com/store-next/internal/models"
	"github.com/store-next/internal/repository"
	"github.com/store-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Repositories
	ProductRepo repository.ProductRepository
	CartRepo    repository.CartRepository

	// Services
	ProductService *service.ProductService
	CartService    *service.CartService
	UploadService  *service.UploadService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
}

func (c *Container) initServices() {
	c.ProductService = service.NewProductService(c.ProductRepo, c.CartRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.UploadService = service.NewUploadService(c.Config)
}
