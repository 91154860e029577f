package session

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/procure-ai/internal/model"
)

const (
	// 历史缓存在 Redis 中的过期时间
	historyTTL = 24 * time.Hour
	// Redis key 前缀
	historyKeyPrefix = "conversation:history:"
	// 缓存的历史消息条数上限
	historyCacheSize = 50
)

// Cache 会话历史缓存
// 内存优先，Redis 写穿；两者都未命中时由调用方回源数据库
type Cache struct {
	mu     sync.RWMutex
	memory map[string][]cachedMessage
	redis  *redis.Client
}

// cachedMessage 缓存中的消息
type cachedMessage struct {
	Role    model.SenderRole `json:"role"`
	Content string           `json:"content"`
}

// NewCache 创建历史缓存
// redisClient 可以为 nil，此时只用进程内缓存
func NewCache(redisClient *redis.Client) *Cache {
	return &Cache{
		memory: make(map[string][]cachedMessage),
		redis:  redisClient,
	}
}

// History 读取会话历史
// 返回 (nil, false) 表示缓存未命中
func (c *Cache) History(ctx context.Context, conversationID string) ([]*model.AgentMessage, bool) {
	c.mu.RLock()
	cached, ok := c.memory[conversationID]
	c.mu.RUnlock()

	if !ok && c.redis != nil {
		cached, ok = c.loadFromRedis(ctx, conversationID)
		if ok {
			c.mu.Lock()
			c.memory[conversationID] = cached
			c.mu.Unlock()
		}
	}
	if !ok {
		return nil, false
	}

	messages := make([]*model.AgentMessage, len(cached))
	for i, m := range cached {
		messages[i] = &model.AgentMessage{
			ConversationID: conversationID,
			Role:           m.Role,
			Content:        m.Content,
		}
	}
	return messages, true
}

// Put 整体写入会话历史，超过上限只保留末尾
func (c *Cache) Put(ctx context.Context, conversationID string, messages []*model.AgentMessage) {
	if len(messages) > historyCacheSize {
		messages = messages[len(messages)-historyCacheSize:]
	}

	cached := make([]cachedMessage, len(messages))
	for i, msg := range messages {
		cached[i] = cachedMessage{Role: msg.Role, Content: msg.Content}
	}

	c.mu.Lock()
	c.memory[conversationID] = cached
	c.mu.Unlock()

	c.saveToRedis(ctx, conversationID, cached)
}

// Append 追加一条消息
// 缓存未命中时不建缓存，等下一次 Put 整体写入
func (c *Cache) Append(ctx context.Context, conversationID string, msg *model.AgentMessage) {
	c.mu.Lock()
	cached, ok := c.memory[conversationID]
	if !ok {
		c.mu.Unlock()
		return
	}
	cached = append(cached, cachedMessage{Role: msg.Role, Content: msg.Content})
	if len(cached) > historyCacheSize {
		cached = cached[len(cached)-historyCacheSize:]
	}
	c.memory[conversationID] = cached
	c.mu.Unlock()

	c.saveToRedis(ctx, conversationID, cached)
}

// Invalidate 删除会话缓存
func (c *Cache) Invalidate(ctx context.Context, conversationID string) {
	c.mu.Lock()
	delete(c.memory, conversationID)
	c.mu.Unlock()

	if c.redis != nil {
		if err := c.redis.Del(ctx, historyKeyPrefix+conversationID).Err(); err != nil {
			log.Printf("Warning: failed to delete conversation history from redis: %v", err)
		}
	}
}

// loadFromRedis 从 Redis 加载历史
func (c *Cache) loadFromRedis(ctx context.Context, conversationID string) ([]cachedMessage, bool) {
	data, err := c.redis.Get(ctx, historyKeyPrefix+conversationID).Result()
	if err != nil {
		return nil, false
	}

	var cached []cachedMessage
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

// saveToRedis 保存历史到 Redis，失败只告警
func (c *Cache) saveToRedis(ctx context.Context, conversationID string, cached []cachedMessage) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, historyKeyPrefix+conversationID, data, historyTTL).Err(); err != nil {
		log.Printf("Warning: failed to save conversation history to redis: %v", err)
	}
}
