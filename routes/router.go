package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sproutapp/forum/auth"
	"github.com/sproutapp/forum/config"
	"github.com/sproutapp/forum/controllers"
	"github.com/sproutapp/forum/middleware"
	"github.com/sproutapp/forum/service"
	"github.com/sproutapp/forum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svc *service.Engagement, gate auth.Gate) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Cap request bodies; the multipart parser stops early instead of
	// buffering an oversized upload.
	r.Use(bodyLimit(int64(cfg.MaxRequestBodyMB) << 20))

	// Serve locally stored attachments in dev setups
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	threadController := controllers.NewThreadController(svc)
	replyController := controllers.NewReplyController(svc)

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware())

	// Reads are public; every mutation needs a bearer token.
	api.GET("/threads", threadController.ListThreads)
	api.GET("/threads/:id", threadController.GetThread)

	authed := middleware.AuthRequired(gate)
	api.POST("/threads", authed, threadController.CreateThread)
	api.PUT("/threads/:id", authed, threadController.UpdateThread)
	api.DELETE("/threads/:id", authed, threadController.DeleteThread)
	api.POST("/threads/:id/like", authed, threadController.ToggleThreadLike)

	api.POST("/threads/:id/replies", authed, replyController.CreateReply)
	api.PUT("/replies/:id", authed, replyController.UpdateReply)
	api.DELETE("/replies/:id", authed, replyController.DeleteReply)
	api.POST("/replies/:id/like", authed, replyController.ToggleReplyLike)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r
}

func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes)
		ctx.Next()
	}
}
