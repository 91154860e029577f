package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/middleware"
	"github.com/ashwinyue/procure-ai/internal/service"
	"github.com/ashwinyue/procure-ai/internal/service/agent"
)

// AgentHandler 采购助手处理器
type AgentHandler struct {
	svc *service.Services
}

// NewAgentHandler 创建助手处理器
func NewAgentHandler(svc *service.Services) *AgentHandler {
	return &AgentHandler{svc: svc}
}

// Chat 一轮对话
// POST /api/agent/chat
func (h *AgentHandler) Chat(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req agent.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Agent.Chat(c.Request.Context(), userID, &req)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, resp)
}

// Transcript 会话记录
// GET /api/agent/conversations/:id
func (h *AgentHandler) Transcript(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	conv, err := h.svc.Agent.Transcript(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, conv)
}
