package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware 日志中间件
// 认证中间件在 Next 里执行，之后上下文里才有用户ID
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		user := "-"
		if id, ok := GetUserID(c); ok {
			user = id
		}

		log.Printf("[%s] %s %s | Status: %d | Latency: %v | User: %s",
			c.Request.Method,
			path,
			query,
			c.Writer.Status(),
			latency,
			user,
		)
	}
}
