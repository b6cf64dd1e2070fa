package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"engage/internal/database"
	"engage/internal/router"
	"engage/internal/services"
	"engage/pkg/config"
	"engage/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.GetConfig()

	// 初始化日志
	if err := logger.Initialize(cfg); err != nil {
		panic("初始化日志失败: " + err.Error())
	}
	appLogger := logger.GetLogger()

	// 设置gin模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化数据库
	if err := database.Initialize(cfg); err != nil {
		appLogger.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()

	// 数据库迁移
	if err := database.Migrate(); err != nil {
		appLogger.Fatalf("数据库迁移失败: %v", err)
	}

	// 种子数据：权限目录、系统角色、默认组织和管理员
	if err := seedData(database.GetDB()); err != nil {
		appLogger.Fatalf("初始化种子数据失败: %v", err)
	}

	// 初始化Redis队列
	redisQueue := database.GetRedisQueue()
	defer database.CloseRedisQueue()

	// 启动定时投递调度器
	scheduler := services.NewCampaignScheduler(database.GetDB(), redisQueue, cfg.Sync.Spec)
	if err := scheduler.Start(); err != nil {
		appLogger.Fatalf("启动定时投递调度器失败: %v", err)
	}
	defer scheduler.Stop()

	// 配置路由
	r := router.SetupRouter()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		appLogger.Infof("服务启动，监听端口: %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("收到退出信号，开始关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorf("服务关闭异常: %v", err)
	}

	appLogger.Info("服务已退出")
}
