package settings

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service/session"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"github.com/ashwinyue/procure-ai/internal/testutil"
)

// mockConversationRepository 内存会话仓库
type mockConversationRepository struct {
	conversations []*model.AgentConversation
	messages      []*model.AgentMessage
	actions       []*model.AgentAction
}

func (m *mockConversationRepository) Create(conv *model.AgentConversation) error {
	m.conversations = append(m.conversations, conv)
	return nil
}

func (m *mockConversationRepository) GetByID(id string) (*model.AgentConversation, error) {
	for _, conv := range m.conversations {
		if conv.ID == id {
			return conv, nil
		}
	}
	return nil, nil
}

func (m *mockConversationRepository) ListByUserID(userID string, offset, limit int) ([]*model.AgentConversation, error) {
	var result []*model.AgentConversation
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			result = append(result, conv)
		}
	}
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockConversationRepository) ListIDsByUserID(userID string) ([]string, error) {
	var ids []string
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			ids = append(ids, conv.ID)
		}
	}
	return ids, nil
}

func (m *mockConversationRepository) CreateMessage(msg *model.AgentMessage) error {
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockConversationRepository) CreateAction(action *model.AgentAction) error {
	m.actions = append(m.actions, action)
	return nil
}

func (m *mockConversationRepository) GetRecentMessages(conversationID string, limit int) ([]*model.AgentMessage, error) {
	return nil, nil
}

func (m *mockConversationRepository) Delete(id string) error {
	for i, conv := range m.conversations {
		if conv.ID == id {
			m.conversations = append(m.conversations[:i], m.conversations[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockConversationRepository) DeleteAllByUserID(userID string) (int64, error) {
	var kept []*model.AgentConversation
	var deleted int64
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, conv)
	}
	m.conversations = kept
	return deleted, nil
}

func (m *mockConversationRepository) CountByUserID(userID string) (int64, error) {
	var count int64
	for _, conv := range m.conversations {
		if conv.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockConversationRepository) CountMessagesByUserID(userID string) (int64, error) {
	var count int64
	for _, msg := range m.messages {
		if m.ownedBy(msg.ConversationID, userID) {
			count++
		}
	}
	return count, nil
}

func (m *mockConversationRepository) CountActionsByUserID(userID string) (int64, error) {
	var count int64
	for _, action := range m.actions {
		if m.ownedBy(action.ConversationID, userID) {
			count++
		}
	}
	return count, nil
}

func (m *mockConversationRepository) ownedBy(conversationID, userID string) bool {
	for _, conv := range m.conversations {
		if conv.ID == conversationID {
			return conv.UserID == userID
		}
	}
	return false
}

// mockUsageRepository 固定返回预置汇总
type mockUsageRepository struct {
	summary *types.UsageSummary
}

func (m *mockUsageRepository) Create(usage *model.TokenUsage) error { return nil }
func (m *mockUsageRepository) SummaryByUserID(userID string) (*types.UsageSummary, error) {
	if m.summary != nil {
		return m.summary, nil
	}
	return &types.UsageSummary{}, nil
}

func newTestService() (*Service, *mockConversationRepository, *mockUsageRepository, *session.Cache) {
	repo := &mockConversationRepository{}
	usage := &mockUsageRepository{}
	history := session.NewCache(nil)
	return NewService(repo, usage, history), repo, usage, history
}

func conv(id, userID string) *model.AgentConversation {
	return &model.AgentConversation{ID: id, UserID: userID, Title: "test"}
}

func TestGetAnalytics(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, repo, usage, _ := newTestService()

	repo.conversations = []*model.AgentConversation{conv("c1", "u1"), conv("c2", "u1"), conv("c3", "u2")}
	repo.messages = []*model.AgentMessage{
		{ID: "m1", ConversationID: "c1"}, {ID: "m2", ConversationID: "c1"},
		{ID: "m3", ConversationID: "c2"}, {ID: "m4", ConversationID: "c3"},
	}
	repo.actions = []*model.AgentAction{{ID: "a1", ConversationID: "c1"}}
	usage.summary = &types.UsageSummary{TotalCalls: 7, TotalTokens: 4200, EstimatedCost: 0.012}

	analytics, err := svc.GetAnalytics(context.Background(), "u1")
	assert.NoError(err)
	assert.Equal(int64(2), analytics.Conversations)
	assert.Equal(int64(3), analytics.Messages)
	assert.Equal(int64(1), analytics.ToolCalls)

	// 用量汇总一并返回
	assert.True(analytics.Usage != nil, "analytics must embed the usage summary")
	assert.Equal(int64(7), analytics.Usage.TotalCalls)
	assert.Equal(int64(4200), analytics.Usage.TotalTokens)
}

func TestListConversationsLimitClamp(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, repo, _, _ := newTestService()

	for i := 0; i < 150; i++ {
		repo.conversations = append(repo.conversations, conv(fmt.Sprintf("c%03d", i), "u1"))
	}

	listed, err := svc.ListConversations(context.Background(), "u1", 0, 500)
	assert.NoError(err)
	assert.True(len(listed) <= MaxListLimit, "limit must be clamped")

	listed, err = svc.ListConversations(context.Background(), "u1", 0, 0)
	assert.NoError(err)
	assert.Equal(DefaultListLimit, len(listed))
}

func TestDeleteConversationOwnership(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, repo, _, history := newTestService()
	ctx := context.Background()

	repo.conversations = []*model.AgentConversation{conv("c1", "owner")}
	history.Put(ctx, "c1", []*model.AgentMessage{{Role: model.SenderUser, Content: "hi"}})

	// 别人的会话不可删
	err := svc.DeleteConversation(ctx, "intruder", "c1")
	var notFound *types.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	assert.Equal(1, len(repo.conversations))

	// 本人删除连带清缓存
	assert.NoError(svc.DeleteConversation(ctx, "owner", "c1"))
	assert.Equal(0, len(repo.conversations))
	if _, ok := history.History(ctx, "c1"); ok {
		t.Fatal("history cache must be invalidated on delete")
	}
}

func TestDeleteConversationMissing(t *testing.T) {
	svc, _, _, _ := newTestService()

	err := svc.DeleteConversation(context.Background(), "u1", "missing")
	var notFound *types.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteAllConversations(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, repo, _, history := newTestService()
	ctx := context.Background()

	repo.conversations = []*model.AgentConversation{
		conv("c1", "u1"), conv("c2", "u1"), conv("c3", "u2"),
	}
	history.Put(ctx, "c1", []*model.AgentMessage{{Role: model.SenderUser, Content: "hi"}})
	history.Put(ctx, "c2", []*model.AgentMessage{{Role: model.SenderUser, Content: "hi"}})

	deleted, err := svc.DeleteAllConversations(ctx, "u1")
	assert.NoError(err)
	assert.Equal(int64(2), deleted)

	// 别人的会话不受影响
	assert.Equal(1, len(repo.conversations))
	assert.Equal("u2", repo.conversations[0].UserID)

	for _, id := range []string{"c1", "c2"} {
		if _, ok := history.History(ctx, id); ok {
			t.Fatalf("history cache for %s must be invalidated", id)
		}
	}
}

func TestDeleteAllInvalidatesBeyondPageSize(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, repo, _, history := newTestService()
	ctx := context.Background()

	// 会话数超过单页上限，缓存失效必须覆盖全部会话
	total := MaxListLimit + 50
	for i := 0; i < total; i++ {
		id := fmt.Sprintf("c%03d", i)
		repo.conversations = append(repo.conversations, conv(id, "u1"))
		history.Put(ctx, id, []*model.AgentMessage{{Role: model.SenderUser, Content: "hi"}})
	}

	deleted, err := svc.DeleteAllConversations(ctx, "u1")
	assert.NoError(err)
	assert.Equal(int64(total), deleted)

	for i := 0; i < total; i++ {
		id := fmt.Sprintf("c%03d", i)
		if _, ok := history.History(ctx, id); ok {
			t.Fatalf("history cache for %s must be invalidated", id)
		}
	}
}
