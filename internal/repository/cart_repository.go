package repository

import (
	"errors"

	"github.com/store-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	CreateCart(cart *models.ShoppingCart) error
	GetCart(cartID uint) (*models.ShoppingCart, error)
	UpsertItem(item *models.ShoppingCartItem) error
	DeleteItem(cartID, productID uint) (bool, error)
	ListItemsByProduct(productID uint) ([]models.ShoppingCartItem, error)
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// CreateCart 创建购物车
func (r *GormCartRepository) CreateCart(cart *models.ShoppingCart) error {
	return r.db.Create(cart).Error
}

// GetCart 获取购物车及其全部购物车项
func (r *GormCartRepository) GetCart(cartID uint) (*models.ShoppingCart, error) {
	var cart models.ShoppingCart
	if err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&cart, cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// UpsertItem 添加或更新购物车项（同一购物车同一商品只保留一行）
func (r *GormCartRepository) UpsertItem(item *models.ShoppingCartItem) error {
	if item == nil {
		return nil
	}
	var existing models.ShoppingCartItem
	err := r.db.Where("shopping_cart_id = ? AND product_id = ?", item.ShoppingCartID, item.ProductID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":   item.Quantity,
		"updated_at": item.UpdatedAt,
	}
	if err := r.db.Model(&existing).Updates(updates).Error; err != nil {
		return err
	}
	item.ID = existing.ID
	return nil
}

// DeleteItem 删除购物车项，返回是否确有删除
func (r *GormCartRepository) DeleteItem(cartID, productID uint) (bool, error) {
	result := r.db.Where("shopping_cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.ShoppingCartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListItemsByProduct 枚举引用某商品的全部购物车项
func (r *GormCartRepository) ListItemsByProduct(productID uint) ([]models.ShoppingCartItem, error) {
	var items []models.ShoppingCartItem
	if err := r.db.Where("product_id = ?", productID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
