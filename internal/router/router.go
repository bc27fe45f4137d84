package router

import (
	"net/http"
	"time"

	"BlackByte_Forum/internal/handler"
	"BlackByte_Forum/internal/middleware"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Deps 路由依赖，由 app 组装后注入
type Deps struct {
	Users   *handler.UserHandler
	Forums  *handler.ForumHandler
	Posts   *handler.PostHandler
	Replies *handler.ReplyHandler
	Uploads *handler.UploadHandler
	// Email 未配置 redis 时为 nil，不注册验证接口
	Email *handler.EmailHandler

	Sessions       middleware.SessionResolver
	CookieName     string
	AllowedOrigins []string
	// UploadDir 本地存储目录，为空则不提供静态文件
	UploadDir  string
	PublicPath string
	// MaxBodySize 发帖/上传请求体上限
	MaxBodySize int64
}

func InitRouter(d Deps) *gin.Engine {
	handler.RegisterValidator()

	r := gin.New()
	r.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.NewRequestIDMiddleware(),
		middleware.Session(d.Sessions, d.CookieName),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.URL.Path == "/api/health"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}
				if v := c.GetString(middleware.ContextRequestIDKey); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}
				if v := c.GetString(middleware.ContextUserIDKey); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}
				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
	)
	r.HandleMethodNotAllowed = true

	if d.UploadDir != "" {
		r.Static(d.PublicPath, d.UploadDir)
	}

	auth := middleware.RequireAuth()
	limit := middleware.BodySizeLimiter(d.MaxBodySize)

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/upload", auth, limit, d.Uploads.Upload)
		api.GET("/search", d.Posts.Search)
	}

	// 登录相关接口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", d.Users.Register)
		authGroup.POST("/login", d.Users.Login)
		authGroup.POST("/logout", d.Users.Logout)
		authGroup.GET("/user", auth, d.Users.Me)
		if d.Email != nil {
			authGroup.POST("/verify/send", auth, d.Email.SendCode)
			authGroup.POST("/verify", auth, d.Email.Verify)
		}
	}

	// 用户管理接口
	userGroup := api.Group("/users", auth)
	{
		userGroup.GET("", d.Users.List)
		userGroup.PATCH("/:id/role", d.Users.ChangeRole)
		userGroup.PATCH("/:id/ban", d.Users.Ban)
		userGroup.PATCH("/:id/unban", d.Users.Unban)
	}

	// 论坛相关接口
	forumGroup := api.Group("/forums")
	{
		forumGroup.GET("", d.Forums.List)
		forumGroup.GET("/:slug", d.Forums.Get)
		forumGroup.POST("", auth, d.Forums.Create)
		forumGroup.DELETE("/:id", auth, d.Forums.Delete)
	}

	// 帖子相关接口
	postGroup := api.Group("/posts")
	{
		postGroup.GET("", d.Posts.List)
		postGroup.GET("/:id", d.Posts.Get)
		postGroup.POST("", auth, limit, d.Posts.Create)
		postGroup.PUT("/:id", auth, d.Posts.Update)
		postGroup.DELETE("/:id", auth, d.Posts.Delete)
		postGroup.PATCH("/:id/moderation", auth, d.Posts.Moderate)

		// 与 /:id 共用参数位，:id 即帖子 id
		postGroup.GET("/:id/replies", d.Replies.List)
		postGroup.POST("/:id/replies", auth, d.Replies.Create)
	}

	// 回复相关接口
	replyGroup := api.Group("/replies", auth)
	{
		replyGroup.PUT("/:id", d.Replies.Update)
		replyGroup.DELETE("/:id", d.Replies.Delete)
	}

	return r
}
