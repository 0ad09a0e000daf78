package service

import (
	"context"
	"strings"
	"time"

	"github.com/store-next/internal/cache"
	"github.com/store-next/internal/constants"
	"github.com/store-next/internal/logger"
	"github.com/store-next/internal/models"
	"github.com/store-next/internal/repository"

	"github.com/shopspring/decimal"
)

// 价格区间边界
var (
	productPriceMin = decimal.RequireFromString(constants.ProductPriceMin)
	productPriceMax = decimal.RequireFromString(constants.ProductPriceMax)
)

// ProductService 商品业务服务
type ProductService struct {
	repo     repository.ProductRepository
	cartRepo repository.CartRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, cartRepo repository.CartRepository) *ProductService {
	return &ProductService{repo: repo, cartRepo: cartRepo}
}

// OptionalSaleTime 可选促销时间输入；Provided 为 false 表示字段未出现
type OptionalSaleTime struct {
	Provided bool
	Value    *models.SaleTime // nil 即显式 null
}

// ProductInput 创建/更新商品输入；nil 指针表示字段未提供。
// 只读字段（id、is_on_sale、current_price、cart_items）由解析层丢弃，
// 不会出现在这里。
type ProductInput struct {
	Name        *string
	Description *string
	Price       *string // 原始字面值，解析与区间校验由服务层负责
	SaleStart   OptionalSaleTime
	SaleEnd     OptionalSaleTime
	Photo       *string
	Warranty    *string // 只写字段，内容折叠进 description，永不落库
}

// CartItemProjection 商品投影内嵌的购物车项
type CartItemProjection struct {
	Product  uint `json:"product"`
	Quantity int  `json:"quantity"`
}

// ProductProjection 商品对外投影；is_on_sale/current_price 每次投影时重新计算
type ProductProjection struct {
	ID           uint                 `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Price        models.Money         `json:"price"`
	SaleStart    *models.SaleTime     `json:"sale_start"`
	SaleEnd      *models.SaleTime     `json:"sale_end"`
	IsOnSale     bool                 `json:"is_on_sale"`
	CurrentPrice models.Money         `json:"current_price"`
	CartItems    []CartItemProjection `json:"cart_items"`
	Photo        *string              `json:"photo"`
}

// List 商品列表，附带过滤前总数
func (s *ProductService) List(filter repository.ProductListFilter) ([]ProductProjection, int64, error) {
	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	projections := make([]ProductProjection, 0, len(products))
	for i := range products {
		projection, err := s.Project(&products[i], filter.Now)
		if err != nil {
			return nil, 0, err
		}
		projections = append(projections, *projection)
	}
	return projections, total, nil
}

// Get 获取单个商品投影
func (s *ProductService) Get(id uint) (*ProductProjection, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return s.Project(product, time.Now().UTC())
}

// Create 创建商品；warranty 输入在落库前丢弃，创建不写缓存
func (s *ProductService) Create(input ProductInput) (*ProductProjection, error) {
	if err := s.validate(input, false); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:        strings.TrimSpace(*input.Name),
		Description: *input.Description,
	}
	price, _ := models.NewMoneyFromString(*input.Price)
	product.Price = price
	product.SaleStart = input.SaleStart.Value
	product.SaleEnd = input.SaleEnd.Value
	if input.Photo != nil {
		product.Photo = *input.Photo
	}

	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return s.Project(&product, time.Now().UTC())
}

// Update 更新商品；partial 为 true 时只应用出现的字段。
// 成功后以响应投影回写 product_data_{id} 缓存。
func (s *ProductService) Update(id uint, input ProductInput, partial bool) (*ProductProjection, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	if err := s.validate(input, partial); err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		price, _ := models.NewMoneyFromString(*input.Price)
		product.Price = price
	}
	if input.SaleStart.Provided || !partial {
		product.SaleStart = input.SaleStart.Value
	}
	if input.SaleEnd.Provided || !partial {
		product.SaleEnd = input.SaleEnd.Value
	}
	if input.Photo != nil {
		product.Photo = *input.Photo
	}
	if input.Warranty != nil {
		product.Description += constants.WarrantyHeader + foldWarrantyLines(*input.Warranty)
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	projection, err := s.Project(product, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	// 缓存尽力而为：失败只告警，不影响响应
	summary := cache.ProductSummary{
		Name:        projection.Name,
		Description: projection.Description,
		Price:       projection.Price,
	}
	if err := cache.SetProductSummary(context.Background(), product.ID, summary); err != nil {
		logger.Warnw("product_cache_write_failed", "product_id", product.ID, "error", err)
	}

	return projection, nil
}

// Delete 删除商品并驱逐其缓存摘要；购物车项不级联清理
func (s *ProductService) Delete(id uint) error {
	deleted, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if err := cache.DelProductSummary(context.Background(), id); err != nil {
		logger.Warnw("product_cache_evict_failed", "product_id", id, "error", err)
	}
	return nil
}

// Project 构建商品对外投影；cart_items 按商品 ID 实时枚举
func (s *ProductService) Project(product *models.Product, now time.Time) (*ProductProjection, error) {
	items, err := s.cartRepo.ListItemsByProduct(product.ID)
	if err != nil {
		return nil, err
	}
	cartItems := make([]CartItemProjection, 0, len(items))
	for _, item := range items {
		cartItems = append(cartItems, CartItemProjection{
			Product:  item.ProductID,
			Quantity: item.Quantity,
		})
	}

	projection := &ProductProjection{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		Price:        product.Price,
		SaleStart:    product.SaleStart,
		SaleEnd:      product.SaleEnd,
		IsOnSale:     product.IsOnSale(now),
		CurrentPrice: product.CurrentPrice(now),
		CartItems:    cartItems,
	}
	if photo := strings.TrimSpace(product.Photo); photo != "" {
		projection.Photo = &photo
	}
	return projection, nil
}

// validate 按创建/整体更新（partial=false）或部分更新（partial=true）校验输入
func (s *ProductService) validate(input ProductInput, partial bool) error {
	ve := &ValidationError{}

	if input.Name == nil {
		if !partial {
			ve.Add("name", "This field is required.")
		}
	} else if strings.TrimSpace(*input.Name) == "" {
		ve.Add("name", "This field may not be blank.")
	}

	if input.Description == nil {
		if !partial {
			ve.Add("description", "This field is required.")
		}
	} else {
		length := len([]rune(*input.Description))
		if length < constants.ProductDescriptionMinLen {
			ve.Add("description", "Ensure this field has at least 2 characters.")
		} else if length > constants.ProductDescriptionMaxLen {
			ve.Add("description", "Ensure this field has no more than 200 characters.")
		}
	}

	if input.Price == nil {
		if !partial {
			ve.Add("price", "This field is required.")
		}
	} else if message := validatePriceLiteral(*input.Price); message != "" {
		ve.Add("price", message)
	}

	if ve.Empty() {
		return nil
	}
	return ve
}

// validatePriceLiteral 校验价格字面值，返回空串表示合法
func validatePriceLiteral(literal string) string {
	price, err := decimal.NewFromString(strings.TrimSpace(literal))
	if err != nil {
		return constants.MsgPriceNotNumber
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return constants.MsgPriceNotAboveZero
	}
	if price.Exponent() < -2 {
		return "Ensure that there are no more than 2 decimal places."
	}
	if price.LessThan(productPriceMin) {
		return "Ensure this value is greater than or equal to 1.00."
	}
	if price.GreaterThan(productPriceMax) {
		return "Ensure this value is less than or equal to 100000."
	}
	return ""
}

// foldWarrantyLines 将保修文件内容折叠为单行（多行以 ; 连接）
func foldWarrantyLines(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	trimmed := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed = append(trimmed, strings.TrimRight(line, "\r"))
	}
	return strings.Join(trimmed, constants.WarrantyLineSeparator)
}
