package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB           *gorm.DB // 直接访问数据库（健康检查等）
	Item         ItemRepository
	Cart         CartRepository
	Purchase     PurchaseRepository
	Conversation ConversationRepository
	Usage        UsageRepository
	Auth         AuthRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:           db,
		Item:         NewItemRepository(db),
		Cart:         NewCartRepository(db),
		Purchase:     NewPurchaseRepository(db),
		Conversation: NewConversationRepository(db),
		Usage:        NewUsageRepository(db),
		Auth:         NewAuthRepository(db),
	}
}
