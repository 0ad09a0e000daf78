package router

import (
	"net/http"

	"github.com/store-next/internal/config"
	storehandlers "github.com/store-next/internal/http/handlers/store"
	"github.com/store-next/internal/logger"
	"github.com/store-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.Status(http.StatusMethodNotAllowed)
	})

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的图片）
	r.Static("/uploads", cfg.Upload.Dir)

	handler := storehandlers.New(c)

	apiV1 := r.Group("/api/v1")
	{
		products := apiV1.Group("/products")
		{
			products.GET("/", handler.ListProducts)
			products.POST("/new", handler.CreateProduct)
			products.GET("/:id/", handler.GetProduct)
			products.PUT("/:id/", handler.UpdateProduct)
			products.PATCH("/:id/", handler.PatchProduct)
			products.DELETE("/:id/", handler.DeleteProduct)
		}

		carts := apiV1.Group("/carts")
		{
			carts.POST("/", handler.CreateCart)
			carts.GET("/:id/", handler.GetCart)
			carts.POST("/:id/items", handler.UpsertCartItem)
			carts.DELETE("/:id/items/:product_id", handler.RemoveCartItem)
		}
	}

	return r
}
