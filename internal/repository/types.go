package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	// OnSale 促销过滤参数原值；nil 表示未提供。
	// 值（忽略大小写）等于 true 时筛选当前处于促销区间的商品，
	// 其他任意值筛选 sale_end 为空的商品。
	OnSale *string
	// Now 促销区间判断采样时刻，整个请求只采样一次
	Now    time.Time
	ID     *uint
	Search string
	Limit  int
	Offset int
}
