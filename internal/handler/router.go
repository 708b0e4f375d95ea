package handler

import (
	"github.com/SergeiKhy/qrlink/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "qr-redirect"

// Dependencies всё, что нужно роутеру
type Dependencies struct {
	Redirect    *RedirectHandler
	Links       *LinkHandler
	Health      *HealthHandler
	RateLimiter *middleware.RateLimiter
	APIKey      *middleware.APIKey
	Logger      *zap.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Tracing(serviceName))
	router.Use(middleware.RequestLogger(deps.Logger))

	// Служебные эндпоинты без лимитов
	router.GET("/readyz", deps.Health.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := router.Group("/")
	if deps.RateLimiter != nil {
		limited.Use(deps.RateLimiter.Middleware())
	}

	// Сканирование QR - без API key проверки
	limited.GET("/r/:code", deps.Redirect.Resolve)

	// API v.1
	v1 := limited.Group("/api/v1")
	{
		v1.GET("/health", deps.Health.Health)

		links := v1.Group("/links")
		if deps.APIKey != nil {
			links.Use(deps.APIKey.Middleware())
		}
		links.POST("", deps.Links.CreateLink)
		links.GET("/:code", deps.Links.GetLink)
		links.DELETE("/:code", deps.Links.DeleteLink)
	}

	return router
}
