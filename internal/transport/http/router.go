package handlers

import (
	"strings"
	"time"

	"arcade/internal/application/usecase"
	"arcade/internal/middleware"
	"arcade/internal/transport/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(
	authHandler *AuthHandler,
	profileHandler *ProfileHandler,
	sessionHandler *SessionHandler,
	leaderboardHandler *LeaderboardHandler,
	achievementHandler *AchievementHandler,
	chatHandler *ws.ChatHandler,
	auth *usecase.AuthUseCase,
	limiter *middleware.RateLimiter,
	allowedOrigins string,
) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	if allowedOrigins == "" || allowedOrigins == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = strings.Split(allowedOrigins, ",")
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", limiter.Limit("login", 5, 1*time.Minute), authHandler.Login)
		api.POST("/refresh", authHandler.Refresh)
		api.POST("/logout", authHandler.Logout)

		// Лидерборд открыт для гостей
		api.GET("/leaderboard", leaderboardHandler.List)

		authorized := api.Group("")
		authorized.Use(middleware.AuthMiddleware(auth))
		{
			authorized.GET("/profile", profileHandler.Get)
			authorized.PUT("/profile", profileHandler.Update)
			authorized.PATCH("/profile", profileHandler.Update)
			authorized.DELETE("/profile", profileHandler.DeleteAccount)

			authorized.GET("/game-sessions", sessionHandler.List)
			authorized.POST("/game-sessions", sessionHandler.Create)
			authorized.GET("/game-sessions/:id", sessionHandler.Get)
			authorized.PUT("/game-sessions/:id", sessionHandler.Update)
			authorized.PATCH("/game-sessions/:id", sessionHandler.Update)
			authorized.DELETE("/game-sessions/:id", sessionHandler.Delete)
			authorized.GET("/load-session", sessionHandler.LoadLatest)

			authorized.POST("/leaderboard", leaderboardHandler.Submit)

			authorized.GET("/achievements", achievementHandler.List)
			authorized.POST("/achievements", achievementHandler.Create)
		}
	}

	// Чат: токен приходит в query-параметре, проверяется в самом хендлере
	r.GET("/ws/chat", chatHandler.Serve)

	return r
}
