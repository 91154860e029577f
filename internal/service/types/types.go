package types

import "github.com/ashwinyue/procure-ai/internal/model"

// CartView 购物车视图，带派生统计
type CartView struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Items     []model.CartItem `json:"items"`
	ItemCount int              `json:"item_count"` // 行数
	TotalQty  int              `json:"total_quantity"`
	TotalCost float64          `json:"total_cost"`
}

// CartAnalysis 购物车派生统计
type CartAnalysis struct {
	ItemCount     int     `json:"item_count"`     // 件数合计
	DistinctItems int     `json:"distinct_items"` // 不同物料数
	TotalCost     float64 `json:"total_cost"`
}

// ItemCard 物料卡片，助手消息 metadata 中的渲染单元
// Description 已按 token 预算截断
type ItemCard struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit,omitempty"`
	Supplier    string  `json:"supplier,omitempty"`
}

// ModelUsage 按模型聚合的用量
type ModelUsage struct {
	Model            string  `json:"model"`
	Calls            int64   `json:"calls"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

// UsageSummary 用户的用量汇总
type UsageSummary struct {
	TotalCalls       int64        `json:"total_calls"`
	PromptTokens     int64        `json:"prompt_tokens"`
	CompletionTokens int64        `json:"completion_tokens"`
	TotalTokens      int64        `json:"total_tokens"`
	EstimatedCost    float64      `json:"estimated_cost"`
	ByModel          []ModelUsage `json:"by_model"`
}
