package cache

import (
	"context"
	"fmt"

	"github.com/store-next/internal/constants"
	"github.com/store-next/internal/models"
)

// ProductSummary 商品摘要缓存值，仅包含三个字段
type ProductSummary struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       models.Money `json:"price"`
}

// ProductSummaryKey 构建商品摘要缓存键
func ProductSummaryKey(productID uint) string {
	return fmt.Sprintf(constants.ProductSummaryKeyFormat, productID)
}

// SetProductSummary 写入商品摘要（更新成功后调用，无过期时间）
func SetProductSummary(ctx context.Context, productID uint, summary ProductSummary) error {
	return SetJSON(ctx, ProductSummaryKey(productID), summary, 0)
}

// GetProductSummary 读取商品摘要
func GetProductSummary(ctx context.Context, productID uint) (*ProductSummary, error) {
	var summary ProductSummary
	found, err := GetJSON(ctx, ProductSummaryKey(productID), &summary)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &summary, nil
}

// DelProductSummary 删除商品摘要（删除成功后调用）
func DelProductSummary(ctx context.Context, productID uint) error {
	return Del(ctx, ProductSummaryKey(productID))
}
