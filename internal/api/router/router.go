package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fleetwave/backend/config"
	"fleetwave/backend/internal/api/handler"
	"fleetwave/backend/internal/api/middleware"
	"fleetwave/backend/internal/api/validate"
	"fleetwave/backend/pkg/jwt"
	"fleetwave/backend/pkg/redis"
)

const (
	maxBodyBytes    = 1 << 20
	ipRateLimit     = 300
	apiRateLimit    = 120
	heavyRateLimit  = 6
	rateLimitWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	if err := validate.Register(); err != nil {
		return nil, err
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.RateLimit(rdb, middleware.RateScopeIP, ipRateLimit, rateLimitWindow))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	admin := middleware.RoleAuth(jwt.RoleAdmin)

	// ── API v1（全部需要认证） ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	v1.Use(middleware.RateLimit(rdb, middleware.RateScopeAPI, apiRateLimit, rateLimitWindow))
	heavy := middleware.RateLimit(rdb, middleware.RateScopeHeavy, heavyRateLimit, rateLimitWindow)
	{
		// 司机模块；司机本人的读取在 Handler 层做归属校验
		drivers := v1.Group("/drivers")
		{
			drivers.GET("", admin, h.Driver.ListDrivers)
			drivers.GET("/:id", h.Driver.GetDriver)
			drivers.POST("", admin, h.Driver.CreateDriver)
			drivers.PUT("/:id", admin, h.Driver.UpdateDriver)
			drivers.PUT("/:id/online", admin, h.Driver.SetOnline)
			drivers.DELETE("/:id", admin, h.Driver.DeleteDriver)

			// 租金状态
			drivers.GET("/:id/rent-calendar", h.RentStatus.GetCalendar)
			drivers.GET("/:id/rent-status", h.RentStatus.GetDayStatus)
			drivers.GET("/:id/blocking", h.RentStatus.GetBlocking)
			drivers.GET("/:id/deadlines.ics", h.RentStatus.GetDeadlinesICS)
		}

		// 车队网格
		v1.GET("/rent/grid", admin, h.RentStatus.GetFleetGrid)

		// 租金报告模块
		reports := v1.Group("/rent-reports")
		{
			reports.POST("", h.RentReport.SubmitReport)
			reports.POST("/leave", h.RentReport.MarkLeave)
			reports.GET("", h.RentReport.ListReports)
			reports.PUT("/:id/approve", admin, h.RentReport.ApproveReport)
			reports.PUT("/:id/reject", admin, h.RentReport.RejectReport)
			reports.GET("/:id/adjustments", admin, h.Adjustment.ListReportAdjustments)
		}

		// 财务调整模块
		adjustments := v1.Group("/adjustments", admin)
		{
			adjustments.POST("", h.Adjustment.CreateAdjustment)
			adjustments.PUT("/:id/approve", h.Adjustment.ApproveAdjustment)
			adjustments.PUT("/:id/reject", h.Adjustment.RejectAdjustment)
		}

		// 导出与提醒
		v1.GET("/export/rent-grid", admin, heavy, h.Export.ExportRentGrid)
		v1.POST("/reminders/dispatch", admin, heavy, h.Reminder.Dispatch)
	}

	return r, nil
}
