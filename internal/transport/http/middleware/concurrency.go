package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "sweet-shop/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求不超过 max（存储连接池是瓶颈）。
// 排队最多 wait，拿不到名额返回 503；wait <= 0 时不排队
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			if wait <= 0 {
				resp.Abort(c, resp.CodeUnavailable, "server busy")
				return
			}
			ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
			err := sem.Acquire(ctx, 1)
			cancel()
			if err != nil {
				resp.Abort(c, resp.CodeUnavailable, "server busy")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
