package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/repository"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
)

// 检索上限
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

// 字段边界
const (
	nameMinLen        = 2
	nameMaxLen        = 200
	categoryMinLen    = 2
	categoryMaxLen    = 100
	descriptionMaxLen = 2000
	unitMaxLen        = 32
	supplierMaxLen    = 200
	maxPrice          = 1_000_000_000
)

// Service 物料目录服务
// ES 可选：配置了就走加权全文检索，否则退回 SQL 排序匹配
type Service struct {
	items repository.ItemRepository
	es    *elasticsearch.Client
	index string
}

// NewService 创建目录服务
func NewService(items repository.ItemRepository, es *elasticsearch.Client, indexPrefix string) *Service {
	return &Service{
		items: items,
		es:    es,
		index: indexPrefix + "_items",
	}
}

// SearchRequest 检索请求
type SearchRequest struct {
	Query           string `json:"query"`
	Limit           int    `json:"limit"`
	IncludeArchived bool   `json:"include_archived"`
}

// Search 检索物料
// 有查询词时按 名称 > 类目 > 描述 加权匹配；无查询词时返回最新的在用物料
func (s *Service) Search(ctx context.Context, req *SearchRequest) ([]*model.Item, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		items, err := s.items.ListRecent(limit, req.IncludeArchived)
		if err != nil {
			return nil, fmt.Errorf("failed to list items: %w", err)
		}
		return items, nil
	}

	if s.es != nil {
		if items, err := s.searchES(ctx, query, limit, req.IncludeArchived); err == nil {
			return items, nil
		}
		// ES 故障时降级到 SQL，不让检索整体不可用
	}

	items, err := s.items.Search(query, limit, req.IncludeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

// CreateItemRequest 登记物料请求
type CreateItemRequest struct {
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Description       string  `json:"description"`
	EstimatedPrice    float64 `json:"estimated_price"`
	Unit              string  `json:"unit"`
	PreferredSupplier string  `json:"preferred_supplier"`
	CreatedBy         string  `json:"-"`
	// AllowDuplicate 显式跳过重复建议拦截
	AllowDuplicate bool `json:"allow_duplicate"`
}

// Create 登记物料
// 校验问题聚合成一条错误返回；名称+类目 大小写不敏感撞车时返回重复建议
func (s *Service) Create(ctx context.Context, req *CreateItemRequest) (*model.Item, error) {
	if problems := validate(req); len(problems) > 0 {
		return nil, types.NewValidationError(problems)
	}

	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)

	if !req.AllowDuplicate {
		duplicates, err := s.items.FindByNameCategory(name, category)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicates: %w", err)
		}
		if len(duplicates) > 0 {
			return nil, &types.DuplicateItemError{
				Name:       name,
				Category:   category,
				Duplicates: duplicates,
			}
		}
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "each"
	}

	item := &model.Item{
		ID:                uuid.New().String(),
		Name:              name,
		Category:          category,
		Description:       strings.TrimSpace(req.Description),
		EstimatedPrice:    req.EstimatedPrice,
		Unit:              unit,
		Status:            model.ItemStatusActive,
		PreferredSupplier: strings.TrimSpace(req.PreferredSupplier),
		CreatedBy:         req.CreatedBy,
	}

	if err := s.items.Create(item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	// 索引失败不阻塞登记，检索会退回 SQL
	s.indexItem(ctx, item)

	return item, nil
}

// GetByID 获取物料，不存在时返回 (nil, nil)
func (s *Service) GetByID(ctx context.Context, id string) (*model.Item, error) {
	return s.items.GetByID(id)
}

// SetStatus 物料状态流转（归档/恢复/待审）
// 归档后退出默认检索与重复检测，状态变更同步回写检索索引
func (s *Service) SetStatus(ctx context.Context, id, status string) (*model.Item, error) {
	switch status {
	case model.ItemStatusActive, model.ItemStatusPending, model.ItemStatusArchived:
	default:
		return nil, types.NewValidationError([]string{fmt.Sprintf(
			"status must be one of %s, %s, %s",
			model.ItemStatusActive, model.ItemStatusPending, model.ItemStatusArchived)})
	}

	item, err := s.items.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if item == nil {
		return nil, &types.NotFoundError{Resource: "item", ID: id}
	}
	if item.Status == status {
		return item, nil
	}

	if err := s.items.UpdateStatus(id, status); err != nil {
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}
	item.Status = status
	s.indexItem(ctx, item)

	return item, nil
}

// validate 收集所有字段问题
func validate(req *CreateItemRequest) []string {
	var problems []string

	name := strings.TrimSpace(req.Name)
	if len(name) < nameMinLen || len(name) > nameMaxLen {
		problems = append(problems, fmt.Sprintf("name must be %d-%d characters", nameMinLen, nameMaxLen))
	}

	category := strings.TrimSpace(req.Category)
	if len(category) < categoryMinLen || len(category) > categoryMaxLen {
		problems = append(problems, fmt.Sprintf("category must be %d-%d characters", categoryMinLen, categoryMaxLen))
	}

	if len(req.Description) > descriptionMaxLen {
		problems = append(problems, fmt.Sprintf("description must be at most %d characters", descriptionMaxLen))
	}

	if len(strings.TrimSpace(req.Unit)) > unitMaxLen {
		problems = append(problems, fmt.Sprintf("unit must be at most %d characters", unitMaxLen))
	}

	if len(strings.TrimSpace(req.PreferredSupplier)) > supplierMaxLen {
		problems = append(problems, fmt.Sprintf("preferred_supplier must be at most %d characters", supplierMaxLen))
	}

	price := req.EstimatedPrice
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 || price > maxPrice {
		problems = append(problems, "estimated_price must be a positive finite number")
	}

	return problems
}
