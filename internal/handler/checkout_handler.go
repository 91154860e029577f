package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/middleware"
	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service"
)

// CheckoutHandler 结账处理器
type CheckoutHandler struct {
	svc *service.Services
}

// NewCheckoutHandler 创建结账处理器
func NewCheckoutHandler(svc *service.Services) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// CheckoutRequest 结账请求
type CheckoutRequest struct {
	Notes string `json:"notes"`
}

// Checkout 提交采购申请
// POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		BadRequest(c, err.Error())
		return
	}

	purchase, err := h.svc.Checkout.Checkout(c.Request.Context(), userID, req.Notes, model.PurchaseSourceUI)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, purchase)
}

// List 列出采购申请
// GET /api/purchase-requests?offset=&limit=
func (h *CheckoutHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	offset, _ := strconv.Atoi(c.Query("offset"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	requests, err := h.svc.Checkout.ListForUser(c.Request.Context(), userID, offset, limit)
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, gin.H{"purchase_requests": requests, "count": len(requests)})
}

// Get 采购申请详情
// GET /api/purchase-requests/:id
func (h *CheckoutHandler) Get(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	purchase, err := h.svc.Checkout.GetByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}
	OK(c, purchase)
}
