package model

import "time"

// 购物车数量边界（业务规则）
const (
	CartMinQuantity = 1
	CartMaxQuantity = 999
)

// Cart 购物车，每个用户唯一
type Cart struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string     `gorm:"uniqueIndex;size:36;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	Total     float64    `gorm:"default:0" json:"total"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// CartItem 购物车条目
// Name/Price 为加入购物车时的快照，后续目录修改不回写
type CartItem struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CartID    string    `gorm:"index;size:36;not null" json:"cart_id"`
	ItemID    string    `gorm:"index;size:36;not null" json:"item_id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Category  string    `gorm:"size:100" json:"category"`
	Price     float64   `gorm:"not null" json:"price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Subtotal  float64   `gorm:"not null" json:"subtotal"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// ClampQuantity 将数量收敛到业务允许的区间
func ClampQuantity(q int) int {
	if q < CartMinQuantity {
		return CartMinQuantity
	}
	if q > CartMaxQuantity {
		return CartMaxQuantity
	}
	return q
}
