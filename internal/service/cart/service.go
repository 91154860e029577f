package cart

import (
	"context"
	"fmt"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/repository"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"github.com/google/uuid"
)

// Service 购物车服务
// 每次写入后整体重算小计与合计，不做增量维护
type Service struct {
	carts repository.CartRepository
	items repository.ItemRepository
}

// NewService 创建购物车服务
func NewService(carts repository.CartRepository, items repository.ItemRepository) *Service {
	return &Service{carts: carts, items: items}
}

// Get 获取用户购物车，不存在则惰性创建
func (s *Service) Get(ctx context.Context, userID string) (*types.CartView, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return view(cart), nil
}

// AddItem 加购
// 已有同一物料则合并数量；数量收敛到 [1, 999]
// 条目的名称与价格在此刻快照，后续目录修改不回写
func (s *Service) AddItem(ctx context.Context, userID, itemID string, quantity int) (*types.CartView, error) {
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, &types.NotFoundError{Resource: "item", ID: itemID}
	}

	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	quantity = model.ClampQuantity(quantity)

	var line *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].ItemID == itemID {
			line = &cart.Items[i]
			break
		}
	}

	if line != nil {
		line.Quantity = model.ClampQuantity(line.Quantity + quantity)
		line.Subtotal = line.Price * float64(line.Quantity)
		if err := s.carts.UpdateLine(line); err != nil {
			return nil, fmt.Errorf("failed to update cart line: %w", err)
		}
	} else {
		line = &model.CartItem{
			ID:       uuid.New().String(),
			CartID:   cart.ID,
			ItemID:   item.ID,
			Name:     item.Name,
			Category: item.Category,
			Price:    item.EstimatedPrice,
			Quantity: quantity,
			Subtotal: item.EstimatedPrice * float64(quantity),
		}
		if err := s.carts.CreateLine(line); err != nil {
			return nil, fmt.Errorf("failed to add cart line: %w", err)
		}
	}

	return s.recompute(userID)
}

// UpdateQuantity 修改条目数量
// 小于下限直接拒绝（删除请走 RemoveItem），超过上限收敛到上限
func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) (*types.CartView, error) {
	if quantity < model.CartMinQuantity {
		return nil, &types.CartLimitError{Quantity: quantity}
	}
	if quantity > model.CartMaxQuantity {
		quantity = model.CartMaxQuantity
	}

	_, line, err := s.findLine(userID, lineID)
	if err != nil {
		return nil, err
	}

	line.Quantity = quantity
	line.Subtotal = line.Price * float64(quantity)
	if err := s.carts.UpdateLine(line); err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}

	return s.recompute(userID)
}

// RemoveItem 删除条目
func (s *Service) RemoveItem(ctx context.Context, userID, lineID string) (*types.CartView, error) {
	_, line, err := s.findLine(userID, lineID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.DeleteLine(line.ID); err != nil {
		return nil, fmt.Errorf("failed to remove cart line: %w", err)
	}

	return s.recompute(userID)
}

// Clear 清空购物车，购物车行保留
func (s *Service) Clear(ctx context.Context, userID string) (*types.CartView, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.ClearLines(cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	if err := s.carts.UpdateTotal(cart.ID, 0); err != nil {
		return nil, fmt.Errorf("failed to update cart total: %w", err)
	}

	return s.Get(ctx, userID)
}

// Analyze 购物车派生统计
func (s *Service) Analyze(ctx context.Context, userID string) (*types.CartAnalysis, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, err
	}

	analysis := &types.CartAnalysis{DistinctItems: len(cart.Items)}
	for _, line := range cart.Items {
		analysis.ItemCount += line.Quantity
		analysis.TotalCost += line.Subtotal
	}
	return analysis, nil
}

// getOrCreate 取购物车，没有就建一个空的
func (s *Service) getOrCreate(userID string) (*model.Cart, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}

	cart = &model.Cart{
		ID:     uuid.New().String(),
		UserID: userID,
		Items:  []model.CartItem{},
	}
	if err := s.carts.Create(cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// findLine 定位属于该用户的条目
func (s *Service) findLine(userID, lineID string) (*model.Cart, *model.CartItem, error) {
	cart, err := s.getOrCreate(userID)
	if err != nil {
		return nil, nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID == lineID {
			return cart, &cart.Items[i], nil
		}
	}
	return nil, nil, &types.NotFoundError{Resource: "cart item", ID: lineID}
}

// recompute 重新读取并回写合计
func (s *Service) recompute(userID string) (*types.CartView, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cart: %w", err)
	}
	if cart == nil {
		return nil, fmt.Errorf("cart disappeared during recompute")
	}

	var total float64
	for _, line := range cart.Items {
		total += line.Subtotal
	}
	if err := s.carts.UpdateTotal(cart.ID, total); err != nil {
		return nil, fmt.Errorf("failed to update cart total: %w", err)
	}
	cart.Total = total

	return view(cart), nil
}

// view 构造带派生统计的视图
func view(cart *model.Cart) *types.CartView {
	v := &types.CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Items:     cart.Items,
		ItemCount: len(cart.Items),
	}
	for _, line := range cart.Items {
		v.TotalQty += line.Quantity
		v.TotalCost += line.Subtotal
	}
	return v
}
