package app

import (
	"cyber_heist_backend/docs"
	"cyber_heist_backend/internal/config"
	"cyber_heist_backend/internal/middleware"
	"cyber_heist_backend/internal/model"
	"cyber_heist_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	router.GET("/api/health", c.health.HealthCheck)

	// 玩家接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 内容目录
		authGroup.GET("/cities", c.game.ListCities)
		authGroup.GET("/cities/:id/missions", c.game.CityMissions)
		authGroup.GET("/missions/:id/rooms", c.game.MissionRooms)
		authGroup.GET("/rooms/:id/puzzles", c.game.RoomPuzzles)

		// 解谜
		authGroup.POST("/puzzles/:id/submit", c.puzzle.SubmitAnswer)
		authGroup.POST("/puzzles/:id/hint", c.puzzle.UseHint)
		authGroup.POST("/puzzles/:id/skip", c.puzzle.SkipPuzzle)

		// 状态
		authGroup.GET("/progress", c.game.Progress)
		authGroup.GET("/alarm", c.alarm.GetStatus)
		authGroup.GET("/profile", c.user.Profile)
		authGroup.GET("/leaderboard", c.user.Leaderboard)
	}

	// 管理员接口
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.POST("/users/:id/alarm/reset", c.alarm.ResetAlarm)
		adminGroup.GET("/interactions", c.admin.RecentInteractions)
	}
}
