package repository

import (
	"errors"

	"github.com/ashwinyue/procure-ai/internal/model"
	"gorm.io/gorm"
)

// cartRepositoryImpl 购物车数据访问
type cartRepositoryImpl struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepositoryImpl{db: db}
}

// GetByUserID 获取用户购物车，未命中时返回 (nil, nil)
func (r *cartRepositoryImpl) GetByUserID(userID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车
func (r *cartRepositoryImpl) Create(cart *model.Cart) error {
	return r.db.Create(cart).Error
}

// CreateLine 新增条目
func (r *cartRepositoryImpl) CreateLine(line *model.CartItem) error {
	return r.db.Create(line).Error
}

// UpdateLine 更新条目
func (r *cartRepositoryImpl) UpdateLine(line *model.CartItem) error {
	return r.db.Save(line).Error
}

// DeleteLine 删除条目
func (r *cartRepositoryImpl) DeleteLine(id string) error {
	return r.db.Delete(&model.CartItem{}, "id = ?", id).Error
}

// ClearLines 清空条目，购物车本身保留
func (r *cartRepositoryImpl) ClearLines(cartID string) error {
	return r.db.Delete(&model.CartItem{}, "cart_id = ?", cartID).Error
}

// UpdateTotal 更新合计
func (r *cartRepositoryImpl) UpdateTotal(cartID string, total float64) error {
	return r.db.Model(&model.Cart{}).Where("id = ?", cartID).Update("total", total).Error
}
