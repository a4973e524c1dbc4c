package handler

import (
	"log"
	"strconv"
	"time"

	"ledgerpay/internal/repository"
	"ledgerpay/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const contextKeyUserID = "userID"

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				c.AbortWithStatusJSON(500, gin.H{
					"code":    500,
					"message": "服务器内部错误",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// IdentityMiddleware 身份中间件
// 认证由外部网关完成，这里只取 X-User-ID 作为当前用户身份
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetHeader("X-User-ID")
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(401, gin.H{
				"code":    response.CodeUnauthorized,
				"message": "缺少有效的用户身份",
			})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}

// AdminMiddleware 管理员能力校验
// 角色判断只在这一个地方做，业务代码不再各自检查 is_admin
func AdminMiddleware(db *gorm.DB) gin.HandlerFunc {
	userRepo := repository.NewUserRepository(db)
	return func(c *gin.Context) {
		userID := c.GetInt64(contextKeyUserID)
		user, err := userRepo.GetByID(c.Request.Context(), userID)
		if err != nil || !user.IsAdmin {
			c.AbortWithStatusJSON(403, gin.H{
				"code":    response.CodeForbidden,
				"message": "需要管理员权限",
			})
			return
		}
		c.Next()
	}
}

// currentUserID 当前请求用户
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(contextKeyUserID)
}
