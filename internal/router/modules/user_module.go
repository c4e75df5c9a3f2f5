package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-users-auth-api/internal/interface/http"
	"github.com/oksasatya/go-users-auth-api/internal/interface/middleware"
)

// UserModule wires account and token routes under /users.
// Public: POST /users, POST /users/login, POST /users/refreshTokens
// Authenticated: GET /users, /users/search, /users/me (GET, PUT, DELETE), POST /users/me/avatar, POST /users/logout
// Admin: GET, PUT, DELETE /users/:id
type UserModule struct {
	Users *handlers.UserHandler
	Auth  *handlers.AuthHandler
	Authn middleware.Authenticator
	RDB   *redis.Client

	// requests per minute per IP (avatar: per user); 0 disables the limiter
	LoginRate   int
	RefreshRate int
	AvatarRate  int
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	loginLimiter := middleware.RateLimit(m.RDB, m.LoginRate, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.RDB, m.RefreshRate, time.Minute, middleware.KeyByIPAndPath(), nil)
	avatarLimiter := middleware.RateLimit(m.RDB, m.AvatarRate, time.Minute, middleware.KeyByUserID(), nil)

	users.POST("", m.Users.Create)
	users.POST("/login", loginLimiter, m.Auth.Login)
	users.POST("/refreshTokens", refreshLimiter, m.Auth.RefreshTokens)

	auth := users.Group("")
	auth.Use(middleware.Authenticate(m.Authn))
	{
		auth.GET("", m.Users.List)
		auth.GET("/search", m.Users.Search)
		auth.GET("/me", m.Users.Me)
		auth.PUT("/me", m.Users.UpdateMe)
		auth.DELETE("/me", m.Users.DeleteMe)
		auth.POST("/me/avatar", avatarLimiter, m.Users.UploadAvatar)
		auth.POST("/logout", m.Auth.Logout)
	}

	admin := auth.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/:id", m.Users.GetByID)
		admin.PUT("/:id", m.Users.UpdateByID)
		admin.DELETE("/:id", m.Users.DeleteByID)
	}
}
