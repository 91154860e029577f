// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service/types"
)

// ========== ItemRepository 接口 ==========

// ItemRepository 物料目录数据访问接口
type ItemRepository interface {
	Create(item *model.Item) error
	// GetByID 未命中时返回 (nil, nil)
	GetByID(id string) (*model.Item, error)
	// FindByNameCategory 大小写不敏感的 名称+类目 精确匹配，用于重复检测
	FindByNameCategory(name, category string) ([]*model.Item, error)
	// Search 加权模糊检索，名称权重最高
	Search(query string, limit int, includeArchived bool) ([]*model.Item, error)
	// ListRecent 无查询词时按创建时间倒序返回
	ListRecent(limit int, includeArchived bool) ([]*model.Item, error)
	ListByIDs(ids []string) ([]*model.Item, error)
	UpdateStatus(id, status string) error
}

// ========== CartRepository 接口 ==========

// CartRepository 购物车数据访问接口
type CartRepository interface {
	// GetByUserID 未命中时返回 (nil, nil)，行按加入时间排序
	GetByUserID(userID string) (*model.Cart, error)
	Create(cart *model.Cart) error
	CreateLine(line *model.CartItem) error
	UpdateLine(line *model.CartItem) error
	DeleteLine(id string) error
	// ClearLines 清空行，购物车行本身保留
	ClearLines(cartID string) error
	UpdateTotal(cartID string, total float64) error
}

// ========== PurchaseRepository 接口 ==========

// PurchaseRepository 采购申请数据访问接口
type PurchaseRepository interface {
	// CreateFromCart 在单个事务内：原子递增申请人计数器并写入序号、
	// 落库申请与行快照、清空购物车行。任一步失败则整体回滚
	CreateFromCart(req *model.PurchaseRequest, cartID string) error
	ListByUserID(userID string, offset, limit int) ([]*model.PurchaseRequest, error)
	// GetByID 未命中时返回 (nil, nil)
	GetByID(id string) (*model.PurchaseRequest, error)
}

// ========== ConversationRepository 接口 ==========

// ConversationRepository 助手会话数据访问接口
type ConversationRepository interface {
	Create(conv *model.AgentConversation) error
	// GetByID 预载消息与动作日志，按时间升序；未命中时返回 (nil, nil)
	GetByID(id string) (*model.AgentConversation, error)
	ListByUserID(userID string, offset, limit int) ([]*model.AgentConversation, error)
	// ListIDsByUserID 返回用户全部会话 ID，批量缓存失效用
	ListIDsByUserID(userID string) ([]string, error)
	CreateMessage(msg *model.AgentMessage) error
	CreateAction(action *model.AgentAction) error
	GetRecentMessages(conversationID string, limit int) ([]*model.AgentMessage, error)
	Delete(id string) error
	DeleteAllByUserID(userID string) (int64, error)
	CountByUserID(userID string) (int64, error)
	CountMessagesByUserID(userID string) (int64, error)
	CountActionsByUserID(userID string) (int64, error)
}

// ========== UsageRepository 接口 ==========

// UsageRepository 用量记录数据访问接口
type UsageRepository interface {
	Create(usage *model.TokenUsage) error
	SummaryByUserID(userID string) (*types.UsageSummary, error)
}

// ========== AuthRepository 接口 ==========

// AuthRepository 用户与令牌数据访问接口
type AuthRepository interface {
	CreateUser(user *model.User) error
	// GetUserByEmail 未命中时返回 (nil, nil)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id string) (*model.User, error)
	UpdateUser(user *model.User) error
	CreateToken(token *model.AuthToken) error
	GetTokenByValue(token string) (*model.AuthToken, error)
	RevokeToken(id string) error
}

// 编译期接口实现检查
var (
	_ ItemRepository         = (*itemRepositoryImpl)(nil)
	_ CartRepository         = (*cartRepositoryImpl)(nil)
	_ PurchaseRepository     = (*purchaseRepositoryImpl)(nil)
	_ ConversationRepository = (*conversationRepositoryImpl)(nil)
	_ UsageRepository        = (*usageRepositoryImpl)(nil)
	_ AuthRepository         = (*authRepositoryImpl)(nil)
)
