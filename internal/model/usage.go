package model

import "time"

// TokenUsage LLM 调用用量记录，每次调用一条，只追加
type TokenUsage struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserID           string    `gorm:"index;size:36" json:"user_id"`
	ConversationID   string    `gorm:"index;size:36" json:"conversation_id"`
	Provider         string    `gorm:"size:50" json:"provider"`
	Model            string    `gorm:"size:100;index" json:"model"`
	PromptTokens     int       `gorm:"default:0" json:"prompt_tokens"`
	CompletionTokens int       `gorm:"default:0" json:"completion_tokens"`
	TotalTokens      int       `gorm:"default:0" json:"total_tokens"`
	EstimatedCost    float64   `gorm:"default:0" json:"estimated_cost"`
	Estimated        bool      `gorm:"default:false" json:"estimated"` // 提供商未返回用量时按字符数估算
	CreatedAt        time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (TokenUsage) TableName() string {
	return "token_usages"
}
