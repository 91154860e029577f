package settings

import (
	"context"
	"fmt"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/repository"
	"github.com/ashwinyue/procure-ai/internal/service/session"
	"github.com/ashwinyue/procure-ai/internal/service/types"
)

// 会话列表分页默认值
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service 设置与统计服务
type Service struct {
	conversations repository.ConversationRepository
	usage         repository.UsageRepository
	history       *session.Cache
}

// NewService 创建设置服务
func NewService(conversations repository.ConversationRepository, usage repository.UsageRepository, history *session.Cache) *Service {
	return &Service{
		conversations: conversations,
		usage:         usage,
		history:       history,
	}
}

// Usage 用户的 token 用量汇总
func (s *Service) Usage(ctx context.Context, userID string) (*types.UsageSummary, error) {
	summary, err := s.usage.SummaryByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage summary: %w", err)
	}
	return summary, nil
}

// Analytics 助手使用统计，含会话维度计数与 token 用量汇总
type Analytics struct {
	Conversations int64               `json:"conversations"`
	Messages      int64               `json:"messages"`
	ToolCalls     int64               `json:"tool_calls"`
	Usage         *types.UsageSummary `json:"usage"`
}

// GetAnalytics 统计用户的助手使用情况
func (s *Service) GetAnalytics(ctx context.Context, userID string) (*Analytics, error) {
	conversations, err := s.conversations.CountByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}
	messages, err := s.conversations.CountMessagesByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	toolCalls, err := s.conversations.CountActionsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tool calls: %w", err)
	}
	usage, err := s.usage.SummaryByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage summary: %w", err)
	}

	return &Analytics{
		Conversations: conversations,
		Messages:      messages,
		ToolCalls:     toolCalls,
		Usage:         usage,
	}, nil
}

// ListConversations 列出用户的会话，新的在前
func (s *Service) ListConversations(ctx context.Context, userID string, offset, limit int) ([]*model.AgentConversation, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	conversations, err := s.conversations.ListByUserID(userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// DeleteConversation 删除会话及其消息与动作日志
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	conv, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil || conv.UserID != userID {
		return &types.NotFoundError{Resource: "conversation", ID: conversationID}
	}

	if err := s.conversations.Delete(conversationID); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	s.history.Invalidate(ctx, conversationID)
	return nil
}

// DeleteAllConversations 清空用户的全部会话历史，返回删除的会话数
// 先取全量 ID 再删除，保证每个会话的历史缓存都被失效
func (s *Service) DeleteAllConversations(ctx context.Context, userID string) (int64, error) {
	ids, err := s.conversations.ListIDsByUserID(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list conversations: %w", err)
	}

	deleted, err := s.conversations.DeleteAllByUserID(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversations: %w", err)
	}

	for _, id := range ids {
		s.history.Invalidate(ctx, id)
	}
	return deleted, nil
}
