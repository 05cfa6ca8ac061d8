package app

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liqd/a4-roots/internal/middleware"
	"github.com/liqd/a4-roots/internal/modules/auth"
	"github.com/liqd/a4-roots/internal/modules/summarization"
	pkgredis "github.com/liqd/a4-roots/internal/pkg/redis"
	"github.com/liqd/a4-roots/internal/pkg/response"
)

func (a *App) registerRoutes(rc *pkgredis.Client) error {
	r := a.router
	db := a.db

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	summarySvc, err := summarization.NewService(db, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("summarization: %w", err)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.SessionKey())
	api.Use(middleware.RateLimit(rc.Raw()))

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": 1, "status": "healthy"})
	})

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, middleware.Auth())
	summarization.RegisterRoutes(api, db, summarySvc, a.logger)

	return nil
}
