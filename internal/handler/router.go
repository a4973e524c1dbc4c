package handler

import (
	"ledgerpay/internal/config"
	"ledgerpay/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, collector *metrics.Collector) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg, collector)

	// API 路由组（所有业务接口都要求用户身份）
	api := r.Group("/api/v1")
	api.Use(IdentityMiddleware())
	{
		// 账户相关
		api.GET("/account", h.GetAccount)
		api.GET("/account/qr", h.GetAccountQR)
		api.GET("/dashboard", h.Dashboard)
		api.GET("/transactions", h.ListTransactions)

		// 转账相关
		api.POST("/transfer", h.Transfer)
		api.POST("/account/:id/pay", h.PayAccount)

		// 收款请求相关
		requests := api.Group("/requests")
		{
			requests.POST("", h.CreateMoneyRequest)
			requests.GET("", h.ListMoneyRequests)
			requests.POST("/:id/approve", h.ApproveMoneyRequest)
			requests.POST("/:id/reject", h.RejectMoneyRequest)
		}

		// 提现相关
		withdrawals := api.Group("/withdrawals")
		{
			withdrawals.POST("", h.CreateWithdrawal)
			withdrawals.GET("", h.ListWithdrawals)
		}

		// 管理端（能力校验只在这一层做）
		admin := api.Group("/admin")
		admin.Use(AdminMiddleware(db))
		{
			admin.POST("/deposit", h.AdminDeposit)
			admin.GET("/withdrawals", h.AdminListWithdrawals)
			admin.POST("/withdrawals/:id/approve", h.AdminApproveWithdrawal)
			admin.POST("/withdrawals/:id/reject", h.AdminRejectWithdrawal)
			admin.GET("/dashboard", h.AdminDashboard)
			admin.GET("/profit-report.csv", h.AdminProfitReport)
			admin.POST("/users", h.AdminCreateUser)
			admin.GET("/users", h.AdminListUsers)
			admin.DELETE("/users/:id", h.AdminDeleteUser)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 指标
	if collector != nil {
		r.GET("/metrics", gin.WrapH(collector.Handler()))
	}

	return r
}
