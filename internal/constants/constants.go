package constants

// 商品价格约束（与 API 对外表现一致）
const (
	// ProductPriceMin 价格下限（含）
	ProductPriceMin = "1.00"
	// ProductPriceMax 价格上限（含）
	ProductPriceMax = "100000"
)

// 商品描述长度约束
const (
	ProductDescriptionMinLen = 2
	ProductDescriptionMaxLen = 200
)

// 购物车项数量约束
const (
	CartItemQuantityMin = 1
	CartItemQuantityMax = 100
)

// 列表分页约束
const (
	ProductListDefaultLimit = 10
	ProductListMaxLimit     = 100
)

// ProductSummaryKeyFormat 商品摘要缓存键格式
const ProductSummaryKeyFormat = "product_data_%d"

// 校验错误文案（对外契约，不可改动）
const (
	MsgPriceNotNumber    = "A valid number is required"
	MsgPriceNotAboveZero = "Must be above $0.00"
)

// WarrantyHeader 保修信息追加到描述时的标题
const WarrantyHeader = "\n\nWarranty Information:\n"

// WarrantyLineSeparator 保修文件多行内容的连接符
const WarrantyLineSeparator = "; "
