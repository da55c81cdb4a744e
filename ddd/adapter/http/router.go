package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video-translate-service/ddd/application/app"
	"video-translate-service/pkg/config"
	"video-translate-service/pkg/middleware"
)

// Router 路由配置
type Router struct {
	translateApp app.TranslateApp
	opts         ControllerOptions
	jwt          config.JWTConfig
}

// NewRouter 创建路由配置
func NewRouter(translateApp app.TranslateApp, opts ControllerOptions, jwt config.JWTConfig) *Router {
	return &Router{translateApp: translateApp, opts: opts, jwt: jwt}
}

// SetupMiddleware 设置中间件
func (r *Router) SetupMiddleware(engine *gin.Engine) {
	engine.Use(middleware.CORSMiddleware())
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestContextMiddleware())
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes(engine *gin.Engine) {
	controller := NewTranslateController(r.translateApp, r.opts)

	// API v1 路由组，配置了 jwt.secret 时需要 Bearer token
	v1 := engine.Group("/api/v1", middleware.JWTAuthMiddleware(r.jwt.Secret, r.jwt.Issuer))
	{
		v1.POST("/translate", controller.TranslateVideo) // 首次翻译，?async=true 异步
		v1.POST("/retranslate", controller.Retranslate)  // 重新翻译
		v1.GET("/jobs/:job_id", controller.GetJob)       // 作业状态
	}

	// 健康检查路由
	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "video-translate-service",
		})
	}
	engine.GET("/health", health)
	engine.GET("/api/v1/health", health)
}
