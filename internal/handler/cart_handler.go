package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/middleware"
	"github.com/ashwinyue/procure-ai/internal/service"
)

// CartHandler 购物车处理器
type CartHandler struct {
	svc *service.Services
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(svc *service.Services) *CartHandler {
	return &CartHandler{svc: svc}
}

// Get 获取购物车
// GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.svc.Cart.Get(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, view)
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// AddItem 加购
// POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.svc.Cart.AddItem(c.Request.Context(), userID, req.ItemID, req.Quantity)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, view)
}

// UpdateItemRequest 数量更新请求
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// UpdateItem 修改条目数量
// PATCH /api/cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	view, err := h.svc.Cart.UpdateQuantity(c.Request.Context(), userID, c.Param("id"), req.Quantity)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, view)
}

// RemoveItem 删除条目
// DELETE /api/cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.svc.Cart.RemoveItem(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, view)
}

// Clear 清空购物车
// DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	view, err := h.svc.Cart.Clear(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, view)
}

// Analysis 购物车派生统计
// GET /api/cart/analysis
func (h *CartHandler) Analysis(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	analysis, err := h.svc.Cart.Analyze(c.Request.Context(), userID)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, analysis)
}
