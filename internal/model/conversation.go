package model

import "time"

// SenderRole 消息发送方，存储与传输共用同一套枚举
// 与 LLM 角色的转换只发生在 agent 服务的一处边界
type SenderRole string

const (
	SenderUser   SenderRole = "user"
	SenderAgent  SenderRole = "agent"
	SenderSystem SenderRole = "system"
)

// 会话状态
const (
	ConversationStatusActive   = "active"
	ConversationStatusArchived = "archived"
)

// AgentConversation 助手会话
// 首条消息到达时惰性创建
type AgentConversation struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	UserID    string         `gorm:"index;size:36" json:"user_id"`
	Title     string         `gorm:"size:255" json:"title"`
	Status    string         `gorm:"size:20;default:active;index" json:"status"`
	Messages  []AgentMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	Actions   []AgentAction  `gorm:"foreignKey:ConversationID" json:"actions,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (AgentConversation) TableName() string {
	return "agent_conversations"
}

// AgentMessage 会话消息
// Metadata 携带渲染用的结构化数据：物料卡片、购物车快照、采购申请摘要
type AgentMessage struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string     `gorm:"index;size:36;not null" json:"conversation_id"`
	Role           SenderRole `gorm:"size:10;not null" json:"role"` // user, agent, system
	Content        string     `gorm:"type:text" json:"content"`
	Metadata       JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (AgentMessage) TableName() string {
	return "agent_messages"
}

// AgentAction 工具调用日志
type AgentAction struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string    `gorm:"index;size:36;not null" json:"conversation_id"`
	Tool           string    `gorm:"size:50;not null" json:"tool"`
	Arguments      string    `gorm:"type:text" json:"arguments"`
	Result         string    `gorm:"type:text" json:"result,omitempty"`
	Error          string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 指定表名
func (AgentAction) TableName() string {
	return "agent_actions"
}
