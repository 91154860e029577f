package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/middleware"
	"github.com/ashwinyue/procure-ai/internal/service"
	"github.com/ashwinyue/procure-ai/internal/service/catalog"
)

// ItemHandler 物料目录处理器
type ItemHandler struct {
	svc *service.Services
}

// NewItemHandler 创建目录处理器
func NewItemHandler(svc *service.Services) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// Search 检索物料
// GET /api/items?q=&limit=&include_archived=
func (h *ItemHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))

	items, err := h.svc.Catalog.Search(c.Request.Context(), &catalog.SearchRequest{
		Query:           c.Query("q"),
		Limit:           limit,
		IncludeArchived: includeArchived,
	})
	if err != nil {
		Error(c, err)
		return
	}

	OK(c, gin.H{"items": items, "count": len(items)})
}

// Create 登记物料
// POST /api/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req catalog.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if userID, ok := middleware.GetUserID(c); ok {
		req.CreatedBy = userID
	}

	item, err := h.svc.Catalog.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, item)
}

// UpdateStatus 物料状态流转
// PATCH /api/items/:id/status
func (h *ItemHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Catalog.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, item)
}

// Get 物料详情
// GET /api/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Catalog.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "item not found: " + c.Param("id")})
		return
	}
	OK(c, item)
}
