package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/procure-ai/internal/handler"
	"github.com/ashwinyue/procure-ai/internal/middleware"
	"github.com/ashwinyue/procure-ai/internal/service"
)

// SetupRouter 注册路由
func SetupRouter(h *handler.Handlers, svc *service.Services, rdb *redis.Client) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", h.System.Health)
		api.GET("/openapi", h.System.OpenAPI)

		// 目录：读公开，登记可匿名
		api.GET("/items", h.Item.Search)
		api.GET("/items/:id", h.Item.Get)
		api.POST("/items", middleware.OptionalAuth(svc), h.Item.Create)
		api.PATCH("/items/:id/status", middleware.OptionalAuth(svc), h.Item.UpdateStatus)

		// 认证
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Auth.Register)
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/logout", middleware.RequireAuth(svc), h.Auth.Logout)
			authGroup.GET("/me", middleware.RequireAuth(svc), h.Auth.Me)
			authGroup.PUT("/me", middleware.RequireAuth(svc), h.Auth.UpdateMe)
			authGroup.PUT("/password", middleware.RequireAuth(svc), h.Auth.ChangePassword)
		}

		// 购物车
		cartGroup := api.Group("/cart", middleware.RequireAuth(svc))
		{
			cartGroup.GET("", h.Cart.Get)
			cartGroup.DELETE("", h.Cart.Clear)
			cartGroup.GET("/analysis", h.Cart.Analysis)
			cartGroup.POST("/items", h.Cart.AddItem)
			cartGroup.PATCH("/items/:id", h.Cart.UpdateItem)
			cartGroup.DELETE("/items/:id", h.Cart.RemoveItem)
		}

		// 结账与采购申请
		api.POST("/checkout", middleware.RequireAuth(svc), h.Checkout.Checkout)
		api.GET("/purchase-requests", middleware.RequireAuth(svc), h.Checkout.List)
		api.GET("/purchase-requests/:id", middleware.RequireAuth(svc), h.Checkout.Get)

		// 采购助手：可匿名，对话接口限流
		agentGroup := api.Group("/agent", middleware.OptionalAuth(svc))
		{
			agentGroup.POST("/chat",
				middleware.AgentRateLimit(rdb, svc.Config.Agent.RateLimitPerMinute),
				h.Agent.Chat)
			agentGroup.GET("/conversations/:id", h.Agent.Transcript)
		}

		// 用量与设置
		api.GET("/usage", middleware.RequireAuth(svc), h.Settings.Usage)
		settingsGroup := api.Group("/settings", middleware.RequireAuth(svc))
		{
			settingsGroup.GET("/analytics", h.Settings.Analytics)
			settingsGroup.GET("/conversations", h.Settings.ListConversations)
			settingsGroup.DELETE("/conversations", h.Settings.DeleteAllConversations)
			settingsGroup.DELETE("/conversations/:id", h.Settings.DeleteConversation)
		}
	}

	return r
}
