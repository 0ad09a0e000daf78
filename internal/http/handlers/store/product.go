package store

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/store-next/internal/constants"
	"github.com/store-next/internal/models"
	"github.com/store-next/internal/repository"
	"github.com/store-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductListResponse 商品列表分页信封
type ProductListResponse struct {
	Count    int64                       `json:"count"`
	Next     *string                     `json:"next"`
	Previous *string                     `json:"previous"`
	Results  []service.ProductProjection `json:"results"`
}

// ListProducts 商品列表
// 支持 on_sale / search / id 过滤与 limit/offset 分页
func (h *Handler) ListProducts(c *gin.Context) {
	filter := repository.ProductListFilter{Now: time.Now().UTC()}

	if onSale, ok := c.GetQuery("on_sale"); ok {
		filter.OnSale = &onSale
	}
	filter.Search = strings.TrimSpace(c.Query("search"))

	if raw, ok := c.GetQuery("id"); ok {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			respondFieldError(c, "id", "A valid integer is required.")
			return
		}
		parsed := uint(id)
		filter.ID = &parsed
	}

	filter.Limit = parseLimit(c.Query("limit"))
	filter.Offset = parseOffset(c.Query("offset"))

	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProductListResponse{
		Count:    total,
		Next:     pageLink(c.Request, filter.Limit, filter.Offset+filter.Limit, int64(filter.Offset+filter.Limit) < total),
		Previous: pageLink(c.Request, filter.Limit, filter.Offset-filter.Limit, filter.Offset > 0),
		Results:  products,
	})
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	projection, err := h.ProductService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// CreateProduct 创建商品
// 价格先做一道快速检查，再走完整校验
func (h *Handler) CreateProduct(c *gin.Context) {
	input, ok := h.parseProductInput(c)
	if !ok {
		return
	}

	// 快速检查只在价格出现时进行，缺失交给完整校验报必填错误
	if input.Price != nil {
		price, err := strconv.ParseFloat(strings.TrimSpace(*input.Price), 64)
		if err != nil {
			respondFieldError(c, "price", constants.MsgPriceNotNumber)
			return
		}
		if price <= 0 {
			respondFieldError(c, "price", constants.MsgPriceNotAboveZero)
			return
		}
	}

	projection, err := h.ProductService.Create(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projection)
}

// UpdateProduct 整体更新商品（未出现的促销时间会被清除）
func (h *Handler) UpdateProduct(c *gin.Context) {
	h.updateProduct(c, false)
}

// PatchProduct 部分更新商品
func (h *Handler) PatchProduct(c *gin.Context) {
	h.updateProduct(c, true)
}

func (h *Handler) updateProduct(c *gin.Context, partial bool) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	input, ok := h.parseProductInput(c)
	if !ok {
		return
	}
	projection, err := h.ProductService.Update(id, input, partial)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// DeleteProduct 删除商品，目标由路径 id 决定
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parsePathID 解析路径中的商品/购物车 ID，非法值按 404 处理
func parsePathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.Status(http.StatusNotFound)
		return 0, false
	}
	return uint(id), true
}

func parseLimit(raw string) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		return constants.ProductListDefaultLimit
	}
	if limit > constants.ProductListMaxLimit {
		return constants.ProductListMaxLimit
	}
	return limit
}

func parseOffset(raw string) int {
	offset, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// pageLink 生成相邻分页窗口的自引用链接，越界时返回 nil
func pageLink(r *http.Request, limit, offset int, exists bool) *string {
	if !exists {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	link := *r.URL
	query := link.Query()
	query.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	} else {
		query.Del("offset")
	}
	link.RawQuery = query.Encode()
	resolved := resolveRequestURL(r, &link)
	return &resolved
}

func resolveRequestURL(r *http.Request, u *url.URL) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if u.Host == "" && r.Host != "" {
		return scheme + "://" + r.Host + u.String()
	}
	return u.String()
}

// parseProductInput 按 Content-Type 解析商品输入。
// JSON 请求区分字段缺失、显式 null 与有值三种情况；
// 表单与 multipart 请求只区分出现与否。
// 只读字段（id、is_on_sale、current_price、cart_items）一律忽略。
func (h *Handler) parseProductInput(c *gin.Context) (service.ProductInput, bool) {
	contentType := c.ContentType()
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		return h.parseMultipartInput(c)
	case strings.HasPrefix(contentType, "application/x-www-form-urlencoded"):
		return parseFormInput(c)
	default:
		return parseJSONInput(c)
	}
}

func parseJSONInput(c *gin.Context) (service.ProductInput, bool) {
	var input service.ProductInput

	var raw map[string]json.RawMessage
	decoder := json.NewDecoder(c.Request.Body)
	if err := decoder.Decode(&raw); err != nil {
		respondFieldError(c, "detail", "JSON parse error.")
		return input, false
	}

	if value, ok := raw["name"]; ok {
		input.Name = rawStringValue(value)
	}
	if value, ok := raw["description"]; ok {
		input.Description = rawStringValue(value)
	}
	if value, ok := raw["price"]; ok {
		// 价格保留原始字面值，数字与字符串都接受
		input.Price = rawStringValue(value)
	}
	if value, ok := raw["photo"]; ok {
		input.Photo = rawStringValue(value)
	}
	if value, ok := raw["warranty"]; ok {
		input.Warranty = rawStringValue(value)
	}

	for _, field := range []string{"sale_start", "sale_end"} {
		value, ok := raw[field]
		if !ok {
			continue
		}
		parsed, fieldOK := parseOptionalSaleTime(c, field, value)
		if !fieldOK {
			return input, false
		}
		if field == "sale_start" {
			input.SaleStart = parsed
		} else {
			input.SaleEnd = parsed
		}
	}
	return input, true
}

func parseFormInput(c *gin.Context) (service.ProductInput, bool) {
	var input service.ProductInput
	if err := c.Request.ParseForm(); err != nil {
		respondFieldError(c, "detail", "Malformed form body.")
		return input, false
	}
	form := c.Request.PostForm

	if values, ok := form["name"]; ok && len(values) > 0 {
		input.Name = &values[0]
	}
	if values, ok := form["description"]; ok && len(values) > 0 {
		input.Description = &values[0]
	}
	if values, ok := form["price"]; ok && len(values) > 0 {
		input.Price = &values[0]
	}
	if values, ok := form["photo"]; ok && len(values) > 0 {
		input.Photo = &values[0]
	}
	if values, ok := form["warranty"]; ok && len(values) > 0 {
		input.Warranty = &values[0]
	}

	for _, field := range []string{"sale_start", "sale_end"} {
		values, ok := form[field]
		if !ok || len(values) == 0 {
			continue
		}
		parsed, fieldOK := parseSaleTimeLiteral(c, field, values[0])
		if !fieldOK {
			return input, false
		}
		if field == "sale_start" {
			input.SaleStart = parsed
		} else {
			input.SaleEnd = parsed
		}
	}
	return input, true
}

func (h *Handler) parseMultipartInput(c *gin.Context) (service.ProductInput, bool) {
	var input service.ProductInput
	form, err := c.MultipartForm()
	if err != nil {
		respondFieldError(c, "detail", "Malformed multipart body.")
		return input, false
	}

	value := func(field string) *string {
		values, ok := form.Value[field]
		if !ok || len(values) == 0 {
			return nil
		}
		return &values[0]
	}
	input.Name = value("name")
	input.Description = value("description")
	input.Price = value("price")
	input.Warranty = value("warranty")

	for _, field := range []string{"sale_start", "sale_end"} {
		literal := value(field)
		if literal == nil {
			continue
		}
		parsed, fieldOK := parseSaleTimeLiteral(c, field, *literal)
		if !fieldOK {
			return input, false
		}
		if field == "sale_start" {
			input.SaleStart = parsed
		} else {
			input.SaleEnd = parsed
		}
	}

	// 图片作为文件上传，保存后写入 photo 字段
	if files, ok := form.File["photo"]; ok && len(files) > 0 {
		path, err := h.UploadService.SaveProductPhoto(files[0])
		if err != nil {
			respondFieldError(c, "photo", err.Error())
			return input, false
		}
		input.Photo = &path
	} else if literal := value("photo"); literal != nil {
		input.Photo = literal
	}

	// 保修信息作为文件上传时读出内容
	if files, ok := form.File["warranty"]; ok && len(files) > 0 {
		content, err := h.UploadService.ReadWarrantyFile(files[0])
		if err != nil {
			respondFieldError(c, "warranty", err.Error())
			return input, false
		}
		input.Warranty = &content
	}
	return input, true
}

// rawStringValue 从 JSON 原始值提取字符串；null 视为未提供，
// 非字符串标量按字面值透传
func rawStringValue(raw json.RawMessage) *string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	return &trimmed
}

func parseOptionalSaleTime(c *gin.Context, field string, raw json.RawMessage) (service.OptionalSaleTime, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return service.OptionalSaleTime{Provided: true, Value: nil}, true
	}
	var literal string
	if err := json.Unmarshal(raw, &literal); err != nil {
		respondFieldError(c, field, saleTimeFormatMessage)
		return service.OptionalSaleTime{}, false
	}
	return parseSaleTimeLiteral(c, field, literal)
}

const saleTimeFormatMessage = "Datetime has wrong format. Use this format instead: hh:mm AM/PM DD Month YYYY."

func parseSaleTimeLiteral(c *gin.Context, field, literal string) (service.OptionalSaleTime, bool) {
	trimmed := strings.TrimSpace(literal)
	if trimmed == "" {
		return service.OptionalSaleTime{Provided: true, Value: nil}, true
	}
	parsed, err := models.ParseSaleTime(trimmed)
	if err != nil {
		respondFieldError(c, field, saleTimeFormatMessage)
		return service.OptionalSaleTime{}, false
	}
	return service.OptionalSaleTime{Provided: true, Value: &parsed}, true
}
