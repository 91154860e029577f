package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/middleware"
	"github.com/ashwinyue/procure-ai/internal/service"
)

// SettingsHandler 设置与统计处理器
type SettingsHandler struct {
	svc *service.Services
}

// NewSettingsHandler 创建设置处理器
func NewSettingsHandler(svc *service.Services) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Usage token 用量汇总
// GET /api/usage
func (h *SettingsHandler) Usage(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	summary, err := h.svc.Settings.Usage(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, summary)
}

// Analytics 助手使用统计
// GET /api/settings/analytics
func (h *SettingsHandler) Analytics(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	analytics, err := h.svc.Settings.GetAnalytics(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, analytics)
}

// ListConversations 会话列表
// GET /api/settings/conversations?offset=&limit=
func (h *SettingsHandler) ListConversations(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	conversations, err := h.svc.Settings.ListConversations(c.Request.Context(), userID, offset, limit)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, gin.H{"conversations": conversations, "count": len(conversations)})
}

// DeleteConversation 删除单个会话
// DELETE /api/settings/conversations/:id
func (h *SettingsHandler) DeleteConversation(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	if err := h.svc.Settings.DeleteConversation(c.Request.Context(), userID, c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	OK(c, gin.H{"deleted": true})
}

// DeleteAllConversations 清空会话历史
// DELETE /api/settings/conversations
func (h *SettingsHandler) DeleteAllConversations(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	deleted, err := h.svc.Settings.DeleteAllConversations(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, gin.H{"deleted": deleted})
}
