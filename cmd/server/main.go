package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fleetwave/backend/config"
	"fleetwave/backend/internal/api/handler"
	"fleetwave/backend/internal/api/router"
	"fleetwave/backend/internal/rentstatus"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/service"
	"fleetwave/backend/pkg/database"
	"fleetwave/backend/pkg/jwt"
	applogger "fleetwave/backend/pkg/logger"
	"fleetwave/backend/pkg/notify"
	"fleetwave/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loc, err := cfg.Rent.Location()
	if err != nil {
		logger.Fatal("业务时区加载失败", zap.Error(err))
	}

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("rent_timezone", loc.String()),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单、限流与拦截缓存将不可用", zap.Error(err))
		rdb = nil
	}
	// 避免把 nil *redis.Client 装进接口
	var cache service.BlockingCache
	if rdb != nil {
		cache = rdb
	}

	// 5. 提醒事件投递
	publisher, err := notify.New(&cfg.Notify, logger)
	if err != nil {
		logger.Fatal("提醒投递初始化失败", zap.Error(err))
	}

	// 6. 初始化 JWT 管理器与状态引擎
	jwtMgr := jwt.NewManager(&cfg.Auth)
	engine := rentstatus.NewEngine(rentstatus.SystemClock, loc)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, engine, cache, publisher, logger)
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	r, err := router.Setup(cfg, h, jwtMgr, rdb, logger)
	if err != nil {
		logger.Fatal("路由初始化失败", zap.Error(err))
	}

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := publisher.Close(); err != nil {
		logger.Warn("提醒投递关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	sqlDB.Close()

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
