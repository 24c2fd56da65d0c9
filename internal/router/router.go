package router

import (
	"time"

	"github.com/futureme/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Options 是路由所需的会话与跨域配置
type Options struct {
	SessionSecret string
	CORSOrigins   []string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.Default()

	// 前端单独部署时才需要跨域
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions("futureme_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/login", api.Login)

		// 需要登录的路由
		auth := apiGroup.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.POST("/logout", api.Logout)
			auth.GET("/state", api.GetState)
			auth.POST("/onboarding", api.Onboard)
			auth.POST("/checkin", api.CheckIn)

			auth.GET("/messages/daily", api.DailyMessage)
			auth.POST("/messages/judge", api.SilentJudgment)
			auth.POST("/messages/regret", api.ReverseRegret)

			auth.GET("/memories", api.ListMemories)
			auth.POST("/memories", api.ArchiveMemory)
			auth.GET("/memories/export", api.ExportMemories)

			auth.POST("/voice", api.Speak)
			auth.GET("/voice", api.VoiceStatus)
			auth.DELETE("/voice", api.StopVoice)
		}
	}

	return r
}
