package model

import "time"

// 物料状态
const (
	ItemStatusActive   = "active"
	ItemStatusPending  = "pending"
	ItemStatusArchived = "archived"
)

// Item 采购目录物料
type Item struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	Name              string    `gorm:"size:200;not null;index:idx_items_name_category" json:"name"`
	Category          string    `gorm:"size:100;not null;index:idx_items_name_category;index:idx_items_status_category" json:"category"`
	Description       string    `gorm:"type:text" json:"description"`
	EstimatedPrice    float64   `gorm:"not null" json:"estimated_price"`
	Unit              string    `gorm:"size:32;default:each" json:"unit"`
	Status            string    `gorm:"size:20;default:active;index:idx_items_status_category" json:"status"` // active, pending, archived
	PreferredSupplier string    `gorm:"size:200" json:"preferred_supplier,omitempty"`
	CreatedBy         string    `gorm:"index;size:36" json:"created_by,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Item) TableName() string {
	return "items"
}
