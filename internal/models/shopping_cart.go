package models

import "time"

// ShoppingCart 购物车表
type ShoppingCart struct {
	ID        uint      `gorm:"primarykey" json:"id"`    // 主键
	CreatedAt time.Time `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time `json:"updated_at"`              // 更新时间

	Items []ShoppingCartItem `gorm:"foreignKey:ShoppingCartID" json:"items"` // 购物车项
}

// TableName 指定表名
func (ShoppingCart) TableName() string {
	return "shopping_carts"
}

// ShoppingCartItem 购物车项
type ShoppingCartItem struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                          // 主键
	ShoppingCartID uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"shopping_cart_id"` // 购物车ID
	ProductID      uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`       // 商品ID
	Quantity       int       `gorm:"not null" json:"quantity"`                                      // 数量
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                    // 更新时间
}

// TableName 指定表名
func (ShoppingCartItem) TableName() string {
	return "shopping_cart_items"
}
