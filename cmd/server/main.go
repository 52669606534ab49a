package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/api/handler"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/api/router"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/apiclient"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/demande"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/events"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/repository"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/service"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/session"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/validation"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/database"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/jwt"
	applogger "github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/logger"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/redis"
)

// 后台清理间隔
const (
	pruneInterval = time.Minute
	purgeInterval = 15 * time.Minute
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log, "gestion-portal")
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("session_driver", cfg.Session.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. Redis：redis 驱动下为必需；其余驱动仅用于登录限流，连接失败时降级运行
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		if cfg.Session.Driver == "redis" {
			logger.Fatal("Redis 连接失败", zap.Error(err))
		}
		logger.Warn("Redis 不可用，登录限流将不生效", zap.Error(err))
		rdb = nil
	}

	// 4. 会话存储
	var (
		storage  session.Storage
		db       *gorm.DB
		gormStor *session.GormStorage
	)
	switch cfg.Session.Driver {
	case "redis":
		storage = session.NewRedisStorage(rdb, cfg.Session.TTL)
	case "postgres":
		db, err = database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		if _, err := database.Migrate(db, logger); err != nil {
			logger.Fatal("会话表迁移失败", zap.Error(err))
		}
		repo := repository.NewRepository(db)
		gormStor = session.NewGormStorage(repo.SessionEntry, cfg.Session.TTL)
		storage = gormStor
	default:
		logger.Warn("使用内存会话存储，重启后所有会话失效")
		storage = session.NewMemoryStorage(cfg.Session.TTL)
	}

	// 5. 后端客户端
	resolver, err := apiclient.NewBaseURLResolver(&cfg.Backend)
	if err != nil {
		logger.Fatal("后端地址配置无效", zap.Error(err))
	}
	client := apiclient.New(resolver, cfg.Backend.Timeout, logger)

	// 6. 依赖注入: 事件总线 → 领域模块 → Service → Handler
	bus := events.NewBus()
	v := validation.New()
	demandes := demande.NewManager(client, v, bus, cfg.Upload.MaxFileSize, logger)
	sessions := session.NewManager(storage, client, bus, logger)
	svc := service.NewService(cfg, client, demandes, v, bus, logger)
	defer svc.Close()
	h := handler.NewHandler(svc, demandes, logger)

	jwtMgr := jwt.NewManager(&cfg.Session)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, sessions, jwtMgr, rdb, logger)

	// 8. 后台任务：清理空闲会话与过期存储行
	bgCtx, stopBackground := context.WithCancel(context.Background())
	go runEvery(bgCtx, pruneInterval, func() {
		sessions.Prune(cfg.Session.MaxIdle)
	})
	if gormStor != nil {
		go runEvery(bgCtx, purgeInterval, func() {
			n, err := gormStor.Purge(bgCtx)
			if err != nil {
				logger.Warn("清理过期会话数据失败", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("已清理过期会话数据", zap.Int64("rows", n))
			}
		})
	}

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
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
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// runEvery 按固定间隔执行 fn，ctx 取消后退出
func runEvery(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
