package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// saleDiscountFactor 促销折扣系数（92 折）
var saleDiscountFactor = decimal.RequireFromString("0.92")

// Product 商品表
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`                          // 主键
	Name        string    `gorm:"not null;index" json:"name"`                    // 名称
	Description string    `gorm:"type:text;not null" json:"description"`         // 描述
	Price       Money     `gorm:"type:decimal(20,2);not null" json:"price"`      // 价格
	SaleStart   *SaleTime `json:"sale_start"`                                    // 促销开始时间
	SaleEnd     *SaleTime `json:"sale_end"`                                      // 促销结束时间
	Photo       string    `gorm:"type:varchar(255)" json:"photo"`                // 图片路径
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// IsOnSale 判断 now 是否落在促销区间内（闭区间，两端必须都已设置）
func (p *Product) IsOnSale(now time.Time) bool {
	if p.SaleStart == nil || p.SaleEnd == nil {
		return false
	}
	if p.SaleStart.Time.IsZero() || p.SaleEnd.Time.IsZero() {
		return false
	}
	return !now.Before(p.SaleStart.Time) && !now.After(p.SaleEnd.Time)
}

// CurrentPrice 返回当前售价，促销期间按 92 折计算
func (p *Product) CurrentPrice(now time.Time) Money {
	if p.IsOnSale(now) {
		return NewMoneyFromDecimal(p.Price.Decimal.Mul(saleDiscountFactor))
	}
	return p.Price
}
