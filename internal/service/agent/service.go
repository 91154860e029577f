package agent

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/adk"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/ashwinyue/procure-ai/internal/config"
	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/repository"
	"github.com/ashwinyue/procure-ai/internal/service/cart"
	"github.com/ashwinyue/procure-ai/internal/service/catalog"
	"github.com/ashwinyue/procure-ai/internal/service/checkout"
	"github.com/ashwinyue/procure-ai/internal/service/session"
	"github.com/ashwinyue/procure-ai/internal/service/types"
)

// 输入与迭代边界
const (
	inputMaxLen   = 4000
	maxIterations = 10
	titleMaxLen   = 60
)

// systemPrompt 采购助手指令
const systemPrompt = `You are a procurement assistant. You help employees find catalog items,
manage their cart and submit purchase requests.

Rules:
- Always search the catalog before registering a new item.
- When register_item reports possible duplicates, show them and ask the user before retrying with allow_duplicate=true.
- Never call checkout without an explicit confirmation from the user in this conversation.
- Quantities are limited to 1-999 per line.
- Answer concisely. Prices are estimates, say so when totals matter.`

// Service 采购助手服务
// 每轮对话构建一次 eino Agent，工具通过注册表挂载
type Service struct {
	conversations    repository.ConversationRepository
	usage            repository.UsageRepository
	history          *session.Cache
	catalog          *catalog.Service
	cart             *cart.Service
	checkout         *checkout.Service
	ai               config.AIConfig
	webSearchEnabled bool

	// newChatModel 可替换的模型工厂，测试用假模型驱动完整对话回路
	newChatModel func(ctx context.Context) (einomodel.ToolCallingChatModel, error)
}

// NewService 创建助手服务
func NewService(
	conversations repository.ConversationRepository,
	usage repository.UsageRepository,
	history *session.Cache,
	catalogSvc *catalog.Service,
	cartSvc *cart.Service,
	checkoutSvc *checkout.Service,
	cfg *config.Config,
) *Service {
	svc := &Service{
		conversations:    conversations,
		usage:            usage,
		history:          history,
		catalog:          catalogSvc,
		cart:             cartSvc,
		checkout:         checkoutSvc,
		ai:               cfg.AI,
		webSearchEnabled: cfg.Agent.WebSearchEnabled,
	}
	svc.newChatModel = svc.newToolCallingChatModel
	return svc
}

// ChatRequest 对话请求
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message" binding:"required"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	ConversationID string              `json:"conversation_id"`
	Message        *model.AgentMessage `json:"message"`
	Actions        []model.AgentAction `json:"actions,omitempty"`
}

// Chat 处理一轮对话
// 用户消息先落库，模型调用失败时历史仍然完整
func (s *Service) Chat(ctx context.Context, userID string, req *ChatRequest) (*ChatResponse, error) {
	input := strings.TrimSpace(req.Message)
	if input == "" {
		return nil, types.NewValidationError([]string{"message must not be empty"})
	}
	if len(input) > inputMaxLen {
		return nil, types.NewValidationError([]string{fmt.Sprintf("message must be at most %d characters", inputMaxLen)})
	}

	conv, err := s.loadOrCreateConversation(ctx, userID, req.ConversationID, input)
	if err != nil {
		return nil, err
	}

	// 历史在当前消息落库之前读取，当前输入只由 buildMessages 追加一次
	history, err := s.loadHistory(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	userMsg := &model.AgentMessage{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           model.SenderUser,
		Content:        input,
	}
	if err := s.conversations.CreateMessage(userMsg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	s.history.Append(ctx, conv.ID, userMsg)

	windowed := windowHistory(history, input)

	tc := &turnContext{userID: userID}
	reply, usage, err := s.runAgent(ctx, tc, windowed, input)
	if err != nil {
		return nil, err
	}

	agentMsg := &model.AgentMessage{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		Role:           model.SenderAgent,
		Content:        reply,
		Metadata:       tc.metadata(),
	}
	if err := s.conversations.CreateMessage(agentMsg); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}
	s.history.Append(ctx, conv.ID, agentMsg)

	for i := range tc.actions {
		tc.actions[i].ID = uuid.New().String()
		tc.actions[i].ConversationID = conv.ID
		if err := s.conversations.CreateAction(&tc.actions[i]); err != nil {
			log.Printf("Warning: failed to save agent action: %v", err)
		}
	}

	s.recordUsage(userID, conv.ID, input, reply, usage)

	return &ChatResponse{
		ConversationID: conv.ID,
		Message:        agentMsg,
		Actions:        tc.actions,
	}, nil
}

// Transcript 读取完整会话记录并校验归属
func (s *Service) Transcript(ctx context.Context, userID, conversationID string) (*model.AgentConversation, error) {
	conv, err := s.conversations.GetByID(conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil || conv.UserID != userID {
		return nil, &types.NotFoundError{Resource: "conversation", ID: conversationID}
	}
	return conv, nil
}

// loadOrCreateConversation 取会话或在首条消息时惰性创建
func (s *Service) loadOrCreateConversation(ctx context.Context, userID, conversationID, input string) (*model.AgentConversation, error) {
	if conversationID != "" {
		conv, err := s.conversations.GetByID(conversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		if conv == nil || conv.UserID != userID {
			return nil, &types.NotFoundError{Resource: "conversation", ID: conversationID}
		}
		return conv, nil
	}

	title := truncateRunes(input, titleMaxLen)
	conv := &model.AgentConversation{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  title,
		Status: model.ConversationStatusActive,
	}
	if err := s.conversations.Create(conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// loadHistory 缓存优先读历史，未命中回源数据库并回填
func (s *Service) loadHistory(ctx context.Context, conversationID string) ([]*model.AgentMessage, error) {
	if messages, ok := s.history.History(ctx, conversationID); ok {
		return messages, nil
	}

	messages, err := s.conversations.GetRecentMessages(conversationID, maxHistoryMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	s.history.Put(ctx, conversationID, messages)
	return messages, nil
}

// newToolCallingChatModel 创建支持工具调用的 ChatModel
func (s *Service) newToolCallingChatModel(ctx context.Context) (einomodel.ToolCallingChatModel, error) {
	var apiKey, baseURL, modelName string

	switch s.ai.Provider {
	case "openai":
		apiKey = s.ai.OpenAI.APIKey
		baseURL = s.ai.OpenAI.BaseURL
		modelName = s.ai.OpenAI.Model
	case "alibaba", "qwen", "dashscope":
		apiKey = s.ai.Alibaba.AccessKeySecret
		baseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
		modelName = s.ai.Alibaba.Model
	case "deepseek":
		apiKey = s.ai.DeepSeek.APIKey
		baseURL = s.ai.DeepSeek.BaseURL
		modelName = s.ai.DeepSeek.Model
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", s.ai.Provider)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required for provider: %s", s.ai.Provider)
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	temperature := float32(0.7)

	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       modelName,
		Temperature: &temperature,
	})
}

// runAgent 构建 eino Agent 执行一轮，返回回复内容与用量
func (s *Service) runAgent(ctx context.Context, tc *turnContext, history []*model.AgentMessage, input string) (string, *schema.TokenUsage, error) {
	chatModel, err := s.newChatModel(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	einoAgent, err := adk.NewChatModelAgent(ctx, &adk.ChatModelAgentConfig{
		Name:          "procurement-assistant",
		Description:   "Procurement assistant for catalog, cart and purchase requests",
		Instruction:   systemPrompt,
		Model:         chatModel,
		MaxIterations: maxIterations,
		ToolsConfig: adk.ToolsConfig{
			ToolsNodeConfig: compose.ToolsNodeConfig{
				Tools: s.buildTools(ctx, tc),
			},
		},
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to create agent: %w", err)
	}

	iter := einoAgent.Run(ctx, &adk.AgentInput{
		Messages:        buildMessages(history, input),
		EnableStreaming: false,
	})

	var reply string
	var usage *schema.TokenUsage
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			if event.Err == io.EOF {
				break
			}
			return "", nil, fmt.Errorf("agent event error: %w", event.Err)
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}
		msg, err := event.Output.MessageOutput.GetMessage()
		if err != nil {
			continue
		}
		if msg.Role != schema.Assistant {
			continue
		}
		if msg.Content != "" {
			reply = msg.Content
		}
		if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
			if usage == nil {
				usage = &schema.TokenUsage{}
			}
			usage.PromptTokens += msg.ResponseMeta.Usage.PromptTokens
			usage.CompletionTokens += msg.ResponseMeta.Usage.CompletionTokens
			usage.TotalTokens += msg.ResponseMeta.Usage.TotalTokens
		}
	}

	if reply == "" {
		reply = "Sorry, I could not produce a response. Please try again."
	}

	return reply, usage, nil
}

// buildMessages 历史转 LLM 消息，发送方枚举只在这一处映射
func buildMessages(history []*model.AgentMessage, input string) []adk.Message {
	result := make([]adk.Message, 0, len(history)+1)
	for _, msg := range history {
		var role schema.RoleType
		switch msg.Role {
		case model.SenderAgent:
			role = schema.Assistant
		case model.SenderSystem:
			role = schema.System
		default:
			role = schema.User
		}
		result = append(result, &schema.Message{Role: role, Content: msg.Content})
	}
	result = append(result, &schema.Message{Role: schema.User, Content: input})
	return result
}

// modelPricing 每百万 token 的价格（美元）
type modelPricing struct {
	prompt     float64
	completion float64
}

var pricingTable = map[string]modelPricing{
	"gpt-4o-mini":   {prompt: 0.15, completion: 0.60},
	"gpt-4o":        {prompt: 2.50, completion: 10.00},
	"deepseek-chat": {prompt: 0.27, completion: 1.10},
	"qwen-plus":     {prompt: 0.40, completion: 1.20},
	"qwen-turbo":    {prompt: 0.05, completion: 0.20},
}

// recordUsage 记录本轮 token 用量
// 提供方没回用量时按字符数粗估并打上 estimated 标记
func (s *Service) recordUsage(userID, conversationID, input, reply string, usage *schema.TokenUsage) {
	modelName := s.currentModelName()

	record := &model.TokenUsage{
		ID:             uuid.New().String(),
		UserID:         userID,
		ConversationID: conversationID,
		Provider:       s.ai.Provider,
		Model:          modelName,
	}

	if usage != nil {
		record.PromptTokens = usage.PromptTokens
		record.CompletionTokens = usage.CompletionTokens
		record.TotalTokens = usage.TotalTokens
	} else {
		record.PromptTokens = estimateTokens(input)
		record.CompletionTokens = estimateTokens(reply)
		record.TotalTokens = record.PromptTokens + record.CompletionTokens
		record.Estimated = true
	}

	if pricing, ok := pricingTable[modelName]; ok {
		record.EstimatedCost = float64(record.PromptTokens)*pricing.prompt/1e6 +
			float64(record.CompletionTokens)*pricing.completion/1e6
	}

	if err := s.usage.Create(record); err != nil {
		log.Printf("Warning: failed to record token usage: %v", err)
	}
}

// currentModelName 当前配置的模型名
func (s *Service) currentModelName() string {
	switch s.ai.Provider {
	case "openai":
		if s.ai.OpenAI.Model != "" {
			return s.ai.OpenAI.Model
		}
		return "gpt-4o-mini"
	case "alibaba", "qwen", "dashscope":
		return s.ai.Alibaba.Model
	case "deepseek":
		if s.ai.DeepSeek.Model != "" {
			return s.ai.DeepSeek.Model
		}
		return "deepseek-chat"
	}
	return s.ai.Provider
}
