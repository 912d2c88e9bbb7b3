package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"liveroom/internal/api/handlers"
	"liveroom/internal/middleware"
	"liveroom/internal/service"
	"liveroom/internal/utils"
)

func SetupRoutes(r *gin.Engine, services *service.Services, tokens *utils.TokenManager) {
	// 初始化 handlers
	userHandler := handlers.NewUserHandler(services.User)
	roomHandler := handlers.NewRoomHandler(services)

	// API 路由群組
	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "path not found"})
	})

	// 公開路由
	{
		api.POST("/users", userHandler.CreateUser)
		api.GET("/rooms", roomHandler.ListRooms)
		api.GET("/rooms/:id/result", roomHandler.Result)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("")
	authorized.Use(middleware.AuthMiddleware(tokens))
	{
		authorized.GET("/users/me", userHandler.Me)
		authorized.PUT("/users/me", userHandler.UpdateMe)

		rooms := authorized.Group("/rooms")
		{
			rooms.POST("", roomHandler.CreateRoom)
			rooms.POST("/:id/join", roomHandler.JoinRoom)
			rooms.GET("/:id/wait", roomHandler.Wait)
			rooms.POST("/:id/start", roomHandler.Start)
			rooms.POST("/:id/end", roomHandler.End)
			rooms.POST("/:id/leave", roomHandler.Leave)
		}
	}
}
