package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "sweet-shop/internal/transport/http/response"
)

// SimpleRecovery 兜底 panic，统一 500 信封；堆栈交给 ginzap.RecoveryWithZap 外层
func SimpleRecovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("rid", c.GetString(KeyRequestID)),
				)
				resp.Abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
