package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"sweet-shop/internal/core/database"
	resp "sweet-shop/internal/transport/http/response"
)

func mountHealth(r *gin.Engine, db *gorm.DB) {
	live := func(c *gin.Context) { resp.JSON(c, http.StatusOK, resp.OK(gin.H{"status": "OK"})) }
	r.GET("/health", live)
	r.GET("/health/live", live)
	r.GET("/health/ready", func(c *gin.Context) {
		if db == nil {
			resp.Abort(c, resp.CodeUnavailable, "database not configured")
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, db); err != nil {
			_ = c.Error(err)
			resp.Abort(c, resp.CodeUnavailable, "database unavailable")
			return
		}
		resp.JSON(c, http.StatusOK, resp.OK(gin.H{"status": "OK", "database": "up"}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
