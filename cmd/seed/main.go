package main

import (
	"time"

	"github.com/store-next/internal/config"
	"github.com/store-next/internal/logger"
	"github.com/store-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
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

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	now := time.Now().UTC()
	saleStart := models.NewSaleTime(now.Add(-24 * time.Hour))
	saleEnd := models.NewSaleTime(now.Add(24 * time.Hour))

	products := []models.Product{
		{
			Name:        "Mineral Water Strawberry",
			Description: "Natural-flavored strawberry with an anti-oxidant kick.",
			Price:       models.NewMoneyFromDecimal(decimal.RequireFromString("1.00")),
		},
		{
			Name:        "Vitamin Water Zero",
			Description: "Perfect for hydration after a workout.",
			Price:       models.NewMoneyFromDecimal(decimal.RequireFromString("2.50")),
			SaleStart:   &saleStart,
			SaleEnd:     &saleEnd,
		},
		{
			Name:        "Sparkling Lemon",
			Description: "Lightly carbonated with a citrus bite.",
			Price:       models.NewMoneyFromDecimal(decimal.RequireFromString("1.75")),
		},
	}

	for _, p := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", p.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&p).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", p.Name, err)
			} else {
				stdLog.Printf("Created product: %s", p.Name)
			}
		} else {
			stdLog.Printf("Product already exists: %s", p.Name)
		}
	}

	// 一个空购物车，方便本地调试购物车接口
	var cartCount int64
	if err := models.DB.Model(&models.ShoppingCart{}).Count(&cartCount).Error; err != nil {
		stdLog.Printf("Failed to count carts: %v", err)
	} else if cartCount == 0 {
		cart := models.ShoppingCart{}
		if err := models.DB.Create(&cart).Error; err != nil {
			stdLog.Printf("Failed to create cart: %v", err)
		} else {
			stdLog.Printf("Created cart: %d", cart.ID)
		}
	}

	stdLog.Println("Seed finished")
}
