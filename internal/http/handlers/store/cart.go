package store

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateCart 创建空购物车
func (h *Handler) CreateCart(c *gin.Context) {
	cart, err := h.CartService.CreateCart()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

// GetCart 获取购物车及其全部项
func (h *Handler) GetCart(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	cart, err := h.CartService.GetCart(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpsertCartItem 添加或更新购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFieldError(c, "detail", "JSON parse error.")
		return
	}
	item, err := h.CartService.UpsertItem(id, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// RemoveCartItem 删除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := parsePathID(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	if err := h.CartService.RemoveItem(id, uint(productID)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
