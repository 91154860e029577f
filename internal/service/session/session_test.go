package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/ashwinyue/procure-ai/internal/model"
)

func message(role model.SenderRole, content string) *model.AgentMessage {
	return &model.AgentMessage{Role: role, Content: content}
}

func TestHistoryMiss(t *testing.T) {
	cache := NewCache(nil)

	if _, ok := cache.History(context.Background(), "nope"); ok {
		t.Fatal("unknown conversation must miss")
	}
}

func TestPutAndHistory(t *testing.T) {
	cache := NewCache(nil)
	ctx := context.Background()

	cache.Put(ctx, "c1", []*model.AgentMessage{
		message(model.SenderUser, "hello"),
		message(model.SenderAgent, "hi there"),
	})

	history, ok := cache.History(ctx, "c1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != model.SenderUser || history[1].Content != "hi there" {
		t.Fatalf("history out of order: %+v", history)
	}
	if history[0].ConversationID != "c1" {
		t.Fatal("history messages must carry the conversation id")
	}
}

func TestAppendRequiresExistingEntry(t *testing.T) {
	cache := NewCache(nil)
	ctx := context.Background()

	// 未命中时追加是空操作
	cache.Append(ctx, "c1", message(model.SenderUser, "hello"))
	if _, ok := cache.History(ctx, "c1"); ok {
		t.Fatal("append must not create a cache entry")
	}

	cache.Put(ctx, "c1", []*model.AgentMessage{message(model.SenderUser, "hello")})
	cache.Append(ctx, "c1", message(model.SenderAgent, "hi"))

	history, _ := cache.History(ctx, "c1")
	if len(history) != 2 {
		t.Fatalf("expected 2 messages after append, got %d", len(history))
	}
}

func TestCacheSizeCap(t *testing.T) {
	cache := NewCache(nil)
	ctx := context.Background()

	var messages []*model.AgentMessage
	for i := 0; i < historyCacheSize+20; i++ {
		messages = append(messages, message(model.SenderUser, fmt.Sprintf("msg-%d", i)))
	}
	cache.Put(ctx, "c1", messages)

	history, _ := cache.History(ctx, "c1")
	if len(history) != historyCacheSize {
		t.Fatalf("expected %d cached messages, got %d", historyCacheSize, len(history))
	}
	// 保留的是末尾的消息
	if history[len(history)-1].Content != fmt.Sprintf("msg-%d", historyCacheSize+19) {
		t.Fatalf("cache must keep the newest messages, got %q", history[len(history)-1].Content)
	}
}

func TestInvalidate(t *testing.T) {
	cache := NewCache(nil)
	ctx := context.Background()

	cache.Put(ctx, "c1", []*model.AgentMessage{message(model.SenderUser, "hello")})
	cache.Invalidate(ctx, "c1")

	if _, ok := cache.History(ctx, "c1"); ok {
		t.Fatal("invalidated conversation must miss")
	}
}
