package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service"
)

// OptionalAuth 可选认证中间件
// 带有效令牌时用对应用户，否则退回 X-User-ID 头或生成临时用户ID
func OptionalAuth(svc *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			user, err := svc.Auth.ValidateToken(c.Request.Context(), token)
			if err == nil {
				c.Set("user", user)
				c.Set("user_id", user.ID)
				c.Set("token", token)
				c.Next()
				return
			}
		}

		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = uuid.New().String()
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// RequireAuth 认证中间件
// 必须提供有效的会话令牌，否则返回 401
func RequireAuth(svc *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing or malformed Authorization header",
			})
			c.Abort()
			return
		}

		user, err := svc.Auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("token", token)
		c.Next()
	}
}

// bearerToken 从 Authorization 头取 Bearer 令牌
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// GetCurrentUser 从上下文获取当前用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetUserID 从上下文获取当前用户ID
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetToken 从上下文获取当前会话令牌
func GetToken(c *gin.Context) string {
	if token, exists := c.Get("token"); exists {
		if s, ok := token.(string); ok {
			return s
		}
	}
	return ""
}
