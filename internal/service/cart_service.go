package service

import (
	"fmt"
	"time"

	"github.com/store-next/internal/constants"
	"github.com/store-next/internal/models"
	"github.com/store-next/internal/repository"
)

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// CreateCart 创建空购物车
func (s *CartService) CreateCart() (*models.ShoppingCart, error) {
	cart := &models.ShoppingCart{Items: []models.ShoppingCartItem{}}
	if err := s.cartRepo.CreateCart(cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.ShoppingCartItem{}
	}
	return cart, nil
}

// GetCart 获取购物车及其全部项
func (s *CartService) GetCart(cartID uint) (*models.ShoppingCart, error) {
	cart, err := s.cartRepo.GetCart(cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrNotFound
	}
	if cart.Items == nil {
		cart.Items = []models.ShoppingCartItem{}
	}
	return cart, nil
}

// UpsertItem 添加或更新购物车项；数量限定在 [1, 100]，商品必须存在
func (s *CartService) UpsertItem(cartID, productID uint, quantity int) (*models.ShoppingCartItem, error) {
	cart, err := s.cartRepo.GetCart(cartID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrNotFound
	}

	if quantity < constants.CartItemQuantityMin || quantity > constants.CartItemQuantityMax {
		return nil, NewValidationError("quantity", fmt.Sprintf("Ensure this value is between %d and %d.",
			constants.CartItemQuantityMin, constants.CartItemQuantityMax))
	}
	if productID == 0 {
		return nil, NewValidationError("product_id", "This field is required.")
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, NewValidationError("product_id", "Product does not exist.")
	}

	now := time.Now()
	item := &models.ShoppingCartItem{
		ShoppingCartID: cartID,
		ProductID:      productID,
		Quantity:       quantity,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.cartRepo.UpsertItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(cartID, productID uint) error {
	cart, err := s.cartRepo.GetCart(cartID)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrNotFound
	}
	deleted, err := s.cartRepo.DeleteItem(cartID, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
