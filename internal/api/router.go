package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"liveroom/internal/middleware"
	"liveroom/internal/service"
	"liveroom/internal/utils"
	"liveroom/pkg/config"
)

// NewRouter 建立掛好全域中間件與所有路由的 gin engine。
// rdb 為 nil 時不啟用限流。
func NewRouter(cfg *config.Config, services *service.Services, tokens *utils.TokenManager, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logrus.StandardLogger()))
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))
	if rdb != nil {
		r.Use(middleware.RateLimit(rdb, cfg.Redis.RateLimit, cfg.Redis.RateWindow))
	}

	SetupRoutes(r, services, tokens)
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
