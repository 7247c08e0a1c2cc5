package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	resp "sweet-shop/internal/transport/http/response"
)

// Timeout 给请求 ctx 加截止时间，exempt 中的路由模板（如上传）不受限。
// 存储调用因此超时会以 504 返回；处理器未写响应时这里补写
func Timeout(d time.Duration, exempt ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range exempt {
			if strings.HasSuffix(c.FullPath(), p) {
				c.Next()
				return
			}
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			resp.Abort(c, resp.CodeTimeout, "timeout")
		}
	}
}
