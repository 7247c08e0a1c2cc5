package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"sweet-shop/internal/core/auth"
	"sweet-shop/internal/core/config"
	"sweet-shop/internal/core/server"
	mdw "sweet-shop/internal/transport/http/middleware"
)

// 空闲超过该时长的 IP 令牌桶被回收
const perIPIdle = 10 * time.Minute

// Deps 构造引擎所需的全部依赖
type Deps struct {
	Log      *zap.Logger
	Config   *config.Config
	DB       *gorm.DB
	JWT      *auth.JWTer
	Users    mdw.UserFinder
	Registry *Registry
}

func newEngine(d Deps, name string) *gin.Engine {
	lim := d.Config.Limits
	r := server.NewRouter(d.Log, d.Config.App.CORSOrigins)
	r.Use(mdw.RequestID())
	// 各项限制为 0 时不启用
	if lim.RPS > 0 && lim.Burst > 0 {
		r.Use(mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst))
	}
	if lim.PerIPRPS > 0 && lim.PerIPBurst > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst, perIPIdle))
	}
	if lim.MaxConcurrency > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxConcurrency, time.Second))
	}
	if lim.BodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(lim.BodyBytes))
	}
	if lim.TimeoutSec > 0 {
		r.Use(mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second, "/image"))
	}
	r.Use(mdw.SimpleRecovery(d.Log), mdw.Metrics(name), mdw.AccessLog(d.Log))
	mountHealth(r, d.DB)
	return r
}

func guards(d Deps) Guards {
	return Guards{
		User:  mdw.AuthJWT(d.JWT, d.Users),
		Admin: mdw.RequireRole("admin"),
	}
}
