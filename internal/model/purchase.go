package model

import "time"

// 采购申请状态
const (
	PurchaseStatusSubmitted = "submitted"
	PurchaseStatusPending   = "pending"
	PurchaseStatusApproved  = "approved"
	PurchaseStatusRejected  = "rejected"
)

// 采购申请来源
const (
	PurchaseSourceUI    = "ui"
	PurchaseSourceAgent = "agent"
)

// PurchaseRequest 采购申请
// 结账时对购物车内容做不可变快照，创建后不再修改
type PurchaseRequest struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"index;size:36;not null" json:"user_id"`
	Number    string         `gorm:"size:20;not null;index" json:"number"` // PR-000001，按申请人独立递增
	Seq       int64          `gorm:"not null" json:"seq"`
	Items     []PurchaseItem `gorm:"foreignKey:RequestID" json:"items"`
	Total     float64        `gorm:"not null" json:"total"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	Source    string         `gorm:"size:10;default:ui" json:"source"` // ui, agent
	Status    string         `gorm:"size:20;default:submitted;index" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (PurchaseRequest) TableName() string {
	return "purchase_requests"
}

// PurchaseItem 采购申请行，结账时的目录快照
type PurchaseItem struct {
	ID        string  `gorm:"primaryKey;size:36" json:"id"`
	RequestID string  `gorm:"index;size:36;not null" json:"request_id"`
	ItemID    string  `gorm:"size:36" json:"item_id"`
	Name      string  `gorm:"size:200;not null" json:"name"`
	Category  string  `gorm:"size:100" json:"category"`
	Price     float64 `gorm:"not null" json:"price"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Subtotal  float64 `gorm:"not null" json:"subtotal"`
}

// TableName 指定表名
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// RequestCounter 采购申请序号计数器，按申请人一行
// 在结账事务内原子递增，避免并发结账产生重号
type RequestCounter struct {
	UserID     string `gorm:"primaryKey;size:36" json:"user_id"`
	LastNumber int64  `gorm:"not null;default:0" json:"last_number"`
}

// TableName 指定表名
func (RequestCounter) TableName() string {
	return "request_counters"
}
