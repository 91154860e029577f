package repository

import (
	"errors"

	"github.com/ashwinyue/procure-ai/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// itemRepositoryImpl 物料目录数据访问
type itemRepositoryImpl struct {
	db *gorm.DB
}

// NewItemRepository 创建物料仓库
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepositoryImpl{db: db}
}

// Create 创建物料
func (r *itemRepositoryImpl) Create(item *model.Item) error {
	return r.db.Create(item).Error
}

// GetByID 获取物料，未命中时返回 (nil, nil)
func (r *itemRepositoryImpl) GetByID(id string) (*model.Item, error) {
	var item model.Item
	err := r.db.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByNameCategory 大小写不敏感的 名称+类目 精确匹配
func (r *itemRepositoryImpl) FindByNameCategory(name, category string) ([]*model.Item, error) {
	var items []*model.Item
	err := r.db.
		Where("LOWER(name) = LOWER(?) AND LOWER(category) = LOWER(?)", name, category).
		Where("status <> ?", model.ItemStatusArchived).
		Find(&items).Error
	return items, err
}

// Search 加权模糊检索
// 名称命中排最前，其次类目，再次描述；同档内按创建时间倒序
func (r *itemRepositoryImpl) Search(query string, limit int, includeArchived bool) ([]*model.Item, error) {
	pattern := "%" + query + "%"

	tx := r.db.Where("name ILIKE ? OR category ILIKE ? OR description ILIKE ?", pattern, pattern, pattern)
	if !includeArchived {
		tx = tx.Where("status <> ?", model.ItemStatusArchived)
	}

	var items []*model.Item
	err := tx.
		Clauses(clause.OrderBy{
			Expression: clause.Expr{
				SQL:                "CASE WHEN name ILIKE ? THEN 0 WHEN category ILIKE ? THEN 1 ELSE 2 END, created_at DESC",
				Vars:               []interface{}{pattern, pattern},
				WithoutParentheses: true,
			},
		}).
		Limit(limit).
		Find(&items).Error
	return items, err
}

// ListRecent 按创建时间倒序返回最新物料
func (r *itemRepositoryImpl) ListRecent(limit int, includeArchived bool) ([]*model.Item, error) {
	tx := r.db.Order("created_at DESC").Limit(limit)
	if !includeArchived {
		tx = tx.Where("status = ?", model.ItemStatusActive)
	}

	var items []*model.Item
	err := tx.Find(&items).Error
	return items, err
}

// ListByIDs 按 ID 批量获取
func (r *itemRepositoryImpl) ListByIDs(ids []string) ([]*model.Item, error) {
	if len(ids) == 0 {
		return []*model.Item{}, nil
	}
	var items []*model.Item
	err := r.db.Where("id IN ?", ids).Find(&items).Error
	return items, err
}

// UpdateStatus 更新物料状态
func (r *itemRepositoryImpl) UpdateStatus(id, status string) error {
	return r.db.Model(&model.Item{}).Where("id = ?", id).Update("status", status).Error
}
