package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/repository"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"github.com/google/uuid"
)

// 备注长度上限
const notesMaxLen = 1000

// 列表分页默认值
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service 结账服务
// 采购申请一经创建不再修改，申请行是结账时刻的快照
type Service struct {
	carts     repository.CartRepository
	purchases repository.PurchaseRepository
}

// NewService 创建结账服务
func NewService(carts repository.CartRepository, purchases repository.PurchaseRepository) *Service {
	return &Service{carts: carts, purchases: purchases}
}

// Checkout 把购物车结算为采购申请
// 快照、编号分配、清空购物车在同一个事务里完成
func (s *Service) Checkout(ctx context.Context, userID, notes, source string) (*model.PurchaseRequest, error) {
	cart, err := s.carts.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, types.ErrEmptyCart
	}

	notes = strings.TrimSpace(notes)
	if len(notes) > notesMaxLen {
		notes = notes[:notesMaxLen]
	}
	if source != model.PurchaseSourceAgent {
		source = model.PurchaseSourceUI
	}

	req := &model.PurchaseRequest{
		ID:     uuid.New().String(),
		UserID: userID,
		Notes:  notes,
		Source: source,
		Status: model.PurchaseStatusSubmitted,
	}

	for _, line := range cart.Items {
		req.Items = append(req.Items, model.PurchaseItem{
			ID:        uuid.New().String(),
			RequestID: req.ID,
			ItemID:    line.ItemID,
			Name:      line.Name,
			Category:  line.Category,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
		req.Total += line.Subtotal
	}

	if err := s.purchases.CreateFromCart(req, cart.ID); err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	return req, nil
}

// ListForUser 列出用户的采购申请，新的在前
func (s *Service) ListForUser(ctx context.Context, userID string, offset, limit int) ([]*model.PurchaseRequest, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	requests, err := s.purchases.ListByUserID(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase requests: %w", err)
	}
	return requests, nil
}

// GetByID 获取采购申请并校验归属
func (s *Service) GetByID(ctx context.Context, userID, id string) (*model.PurchaseRequest, error) {
	req, err := s.purchases.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase request: %w", err)
	}
	if req == nil || req.UserID != userID {
		return nil, &types.NotFoundError{Resource: "purchase request", ID: id}
	}
	return req, nil
}
