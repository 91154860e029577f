package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/procure-ai/internal/service"
)

// Pinger 数据库存活检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler 系统处理器
type SystemHandler struct {
	svc *service.Services
	db  Pinger
}

// NewSystemHandler 创建系统处理器
func NewSystemHandler(svc *service.Services, db Pinger) *SystemHandler {
	return &SystemHandler{svc: svc, db: db}
}

// Health 存活检查，带数据库 ping
// GET /api/health
func (h *SystemHandler) Health(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			dbStatus = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"version":  h.svc.Config.App.Version,
	})
}

// OpenAPI 机器可读的接口描述
// GET /api/openapi
func (h *SystemHandler) OpenAPI(c *gin.Context) {
	OK(c, openAPISchema(h.svc.Config.App.Version))
}

// openAPISchema 手写的 OpenAPI 3 文档骨架，只覆盖路径与方法
func openAPISchema(version string) gin.H {
	op := func(summary string) gin.H {
		return gin.H{"summary": summary}
	}

	return gin.H{
		"openapi": "3.0.3",
		"info": gin.H{
			"title":   "procure-ai API",
			"version": version,
		},
		"paths": gin.H{
			"/api/health":                      gin.H{"get": op("liveness with database ping")},
			"/api/openapi":                     gin.H{"get": op("this document")},
			"/api/items":                       gin.H{"get": op("search catalog"), "post": op("register item")},
			"/api/items/{id}":                  gin.H{"get": op("item detail")},
			"/api/auth/register":               gin.H{"post": op("register user")},
			"/api/auth/login":                  gin.H{"post": op("login")},
			"/api/auth/logout":                 gin.H{"post": op("logout")},
			"/api/auth/me":                     gin.H{"get": op("current profile"), "put": op("update profile")},
			"/api/auth/password":               gin.H{"put": op("change password")},
			"/api/cart":                        gin.H{"get": op("fetch cart"), "delete": op("clear cart")},
			"/api/cart/items":                  gin.H{"post": op("add item to cart")},
			"/api/cart/items/{id}":             gin.H{"patch": op("update quantity"), "delete": op("remove line")},
			"/api/cart/analysis":               gin.H{"get": op("cart statistics")},
			"/api/checkout":                    gin.H{"post": op("submit purchase request")},
			"/api/purchase-requests":           gin.H{"get": op("list purchase requests")},
			"/api/purchase-requests/{id}":      gin.H{"get": op("purchase request detail")},
			"/api/agent/chat":                  gin.H{"post": op("agent conversation turn")},
			"/api/agent/conversations/{id}":    gin.H{"get": op("conversation transcript")},
			"/api/usage":                       gin.H{"get": op("token usage summary")},
			"/api/settings/analytics":          gin.H{"get": op("assistant usage analytics")},
			"/api/settings/conversations":      gin.H{"get": op("list conversations"), "delete": op("delete all conversations")},
			"/api/settings/conversations/{id}": gin.H{"delete": op("delete conversation")},
		},
	}
}
