package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/middleware"
	"github.com/ashwinyue/procure-ai/internal/service"
	"github.com/ashwinyue/procure-ai/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 注册
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Auth.Register(c.Request.Context(), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, resp)
}

// Login 登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	resp, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		Unauthorized(c, err.Error())
		return
	}
	OK(c, resp)
}

// Logout 登出，撤销当前令牌
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.GetToken(c)
	if token == "" {
		Unauthorized(c, "not logged in")
		return
	}

	if err := h.svc.Auth.Logout(c.Request.Context(), token); err != nil {
		Error(c, err)
		return
	}
	OK(c, gin.H{"logged_out": true})
}

// Me 当前用户资料
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "not logged in")
		return
	}
	OK(c, user.ToUserInfo())
}

// UpdateProfileRequest 资料更新请求
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// UpdateMe 更新资料
// PUT /api/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	info, err := h.svc.Auth.UpdateProfile(c.Request.Context(), userID, req.DisplayName)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	OK(c, info)
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ChangePassword 修改密码
// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Auth.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		BadRequest(c, err.Error())
		return
	}
	OK(c, gin.H{"changed": true})
}
