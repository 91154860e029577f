package repository

import (
	"errors"
	"fmt"

	"github.com/ashwinyue/procure-ai/internal/model"
	"gorm.io/gorm"
)

// purchaseRepositoryImpl 采购申请数据访问
type purchaseRepositoryImpl struct {
	db *gorm.DB
}

// NewPurchaseRepository 创建采购申请仓库
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepositoryImpl{db: db}
}

// CreateFromCart 落库采购申请并清空购物车，单事务完成
// 序号从申请人计数器原子递增获得，并发结账不会重号
func (r *purchaseRepositoryImpl) CreateFromCart(req *model.PurchaseRequest, cartID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var seq int64
		err := tx.Raw(
			`INSERT INTO request_counters (user_id, last_number) VALUES (?, 1)
			 ON CONFLICT (user_id) DO UPDATE SET last_number = request_counters.last_number + 1
			 RETURNING last_number`,
			req.UserID,
		).Scan(&seq).Error
		if err != nil {
			return fmt.Errorf("failed to allocate request number: %w", err)
		}

		req.Seq = seq
		req.Number = fmt.Sprintf("PR-%06d", seq)

		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("failed to create purchase request: %w", err)
		}

		if err := tx.Delete(&model.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return tx.Model(&model.Cart{}).Where("id = ?", cartID).Update("total", 0).Error
	})
}

// ListByUserID 列出用户的采购申请
func (r *purchaseRepositoryImpl) ListByUserID(userID string, offset, limit int) ([]*model.PurchaseRequest, error) {
	var requests []*model.PurchaseRequest
	err := r.db.
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error
	return requests, err
}

// GetByID 获取采购申请，未命中时返回 (nil, nil)
func (r *purchaseRepositoryImpl) GetByID(id string) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	err := r.db.Preload("Items").Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}
