package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/config"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/api/handler"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/api/middleware"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/session"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/jwt"
	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/pkg/redis"
)

// 登录限流：每个 IP 每分钟 10 次
var loginRate = middleware.RateRule{Name: "login", Limit: 10, Window: time.Minute}

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil，此时登录限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, sessions *session.Manager, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders(cfg.Session.Cookie.Secure))
	if cfg.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "sessions": sessions.Len()})
	})

	reviewers := []model.Role{model.RoleAdmin, model.RoleSecretaire}

	// 以下路由都需要浏览器会话
	app := r.Group("")
	app.Use(middleware.BrowserHost())
	app.Use(middleware.Session(sessions, jwtMgr, &cfg.Session, logger))

	// ── 页面路由 ──
	app.GET("/login", h.View.Login)
	app.GET("/dashboard", middleware.ViewGuard(model.RoleAdmin), h.View.Dashboard)
	app.GET("/secretaire/dashboard", middleware.ViewGuard(model.RoleSecretaire), h.View.Dashboard)
	app.GET("/enseignant/dashboard", middleware.ViewGuard(model.RoleEnseignant), h.View.Dashboard)
	app.GET("/fonctionnaire/dashboard", middleware.ViewGuard(model.RoleFonctionnaire), h.View.Dashboard)

	// ── API ──
	api := app.Group("/api")
	{
		// 认证模块（无需登录）
		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, loginRate, logger), h.Auth.Login)
			auth.POST("/logout", h.Auth.Logout)
			auth.GET("/session", h.Auth.Session)
		}

		// 需要登录的路由
		authorized := api.Group("")
		authorized.Use(middleware.RoleAuth())
		{
			authorized.GET("/profile", h.Auth.Profile)

			// 申请模块（角色细则由 demande.Manager 判定）
			demandes := authorized.Group("/demandes")
			{
				demandes.GET("", h.Demande.List)
				demandes.POST("", h.Demande.Create)
				demandes.GET("/export", h.Export.ExportDemandes)
				demandes.GET("/:id", h.Demande.Get)
				demandes.POST("/:id/documents", h.Demande.UploadDocuments)
				demandes.PUT("/:id/approve", middleware.RoleAuth(reviewers...), h.Demande.Approve)
				demandes.PUT("/:id/reject", middleware.RoleAuth(reviewers...), h.Demande.Reject)
				demandes.DELETE("/:id", h.Demande.Delete)
				demandes.GET("/:id/documents/:docId/download", h.Demande.Download)
			}

			// 教师档案
			enseignants := authorized.Group("/enseignants", middleware.RoleAuth(reviewers...))
			{
				enseignants.GET("", h.Staff.ListEnseignants)
				enseignants.POST("", h.Staff.CreateEnseignant)
				enseignants.GET("/:id", h.Staff.GetEnseignant)
				enseignants.PUT("/:id", h.Staff.UpdateEnseignant)
				enseignants.DELETE("/:id", h.Staff.DeleteEnseignant)
			}

			// 公务员档案
			fonctionnaires := authorized.Group("/fonctionnaires", middleware.RoleAuth(reviewers...))
			{
				fonctionnaires.GET("", h.Staff.ListFonctionnaires)
				fonctionnaires.POST("", h.Staff.CreateFonctionnaire)
				fonctionnaires.GET("/:id", h.Staff.GetFonctionnaire)
				fonctionnaires.PUT("/:id", h.Staff.UpdateFonctionnaire)
				fonctionnaires.DELETE("/:id", h.Staff.DeleteFonctionnaire)
				fonctionnaires.POST("/:id/photo", h.Staff.UploadPhoto)
			}

			// 用户模块
			users := authorized.Group("/users", middleware.RoleAuth(model.RoleAdmin))
			{
				users.GET("", h.User.ListUsers)
				users.DELETE("/:id", h.User.DeleteUser)
			}
		}
	}

	return r
}
