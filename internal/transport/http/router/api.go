package router

import "github.com/gin-gonic/gin"

// NewAPIEngine 面向顾客的 /api/v1；写操作由模块用 Guards.Admin 保护
func NewAPIEngine(d Deps) *gin.Engine {
	r := newEngine(d, "api")
	api := r.Group("/api/v1")
	if d.Registry != nil {
		d.Registry.MountAPI(api, guards(d))
	}
	return r
}
