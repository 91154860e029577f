package repository

import (
	"errors"

	"github.com/ashwinyue/procure-ai/internal/model"
	"gorm.io/gorm"
)

// conversationRepositoryImpl 助手会话数据访问
type conversationRepositoryImpl struct {
	db *gorm.DB
}

// NewConversationRepository 创建会话仓库
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepositoryImpl{db: db}
}

// Create 创建会话
func (r *conversationRepositoryImpl) Create(conv *model.AgentConversation) error {
	return r.db.Create(conv).Error
}

// GetByID 获取会话（含消息与动作日志），未命中时返回 (nil, nil)
func (r *conversationRepositoryImpl) GetByID(id string) (*model.AgentConversation, error) {
	var conv model.AgentConversation
	err := r.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListByUserID 列出用户会话
func (r *conversationRepositoryImpl) ListByUserID(userID string, offset, limit int) ([]*model.AgentConversation, error) {
	var convs []*model.AgentConversation
	err := r.db.
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&convs).Error
	return convs, err
}

// ListIDsByUserID 返回用户全部会话 ID
func (r *conversationRepositoryImpl) ListIDsByUserID(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.AgentConversation{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	return ids, err
}

// CreateMessage 追加消息
func (r *conversationRepositoryImpl) CreateMessage(msg *model.AgentMessage) error {
	if err := r.db.Create(msg).Error; err != nil {
		return err
	}
	// 会话 updated_at 跟随最新消息
	return r.db.Model(&model.AgentConversation{}).
		Where("id = ?", msg.ConversationID).
		Update("updated_at", msg.CreatedAt).Error
}

// CreateAction 追加动作日志
func (r *conversationRepositoryImpl) CreateAction(action *model.AgentAction) error {
	return r.db.Create(action).Error
}

// GetRecentMessages 获取会话最近的 N 条消息，按时间升序返回
func (r *conversationRepositoryImpl) GetRecentMessages(conversationID string, limit int) ([]*model.AgentMessage, error) {
	var messages []*model.AgentMessage
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// 倒序查出，翻转为时间升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Delete 删除会话及其消息与动作日志
func (r *conversationRepositoryImpl) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.AgentAction{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.AgentMessage{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.AgentConversation{}, "id = ?", id).Error
	})
}

// DeleteAllByUserID 删除用户的全部会话，返回删除的会话数
func (r *conversationRepositoryImpl) DeleteAllByUserID(userID string) (int64, error) {
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&model.AgentConversation{}).
			Where("user_id = ?", userID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Delete(&model.AgentAction{}, "conversation_id IN ?", ids).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.AgentMessage{}, "conversation_id IN ?", ids).Error; err != nil {
			return err
		}

		result := tx.Delete(&model.AgentConversation{}, "id IN ?", ids)
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// CountByUserID 统计用户会话数
func (r *conversationRepositoryImpl) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.AgentConversation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountMessagesByUserID 统计用户消息数
func (r *conversationRepositoryImpl) CountMessagesByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.AgentMessage{}).
		Joins("JOIN agent_conversations ON agent_conversations.id = agent_messages.conversation_id").
		Where("agent_conversations.user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountActionsByUserID 统计用户工具调用数
func (r *conversationRepositoryImpl) CountActionsByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.AgentAction{}).
		Joins("JOIN agent_conversations ON agent_conversations.id = agent_actions.conversation_id").
		Where("agent_conversations.user_id = ?", userID).
		Count(&count).Error
	return count, err
}
