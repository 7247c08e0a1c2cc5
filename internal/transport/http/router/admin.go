package router

import "github.com/gin-gonic/gin"

// NewAdminEngine 管理端 /admin/v1（统一要求 admin 角色）
func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine(d, "admin")
	g := guards(d)
	admin := r.Group("/admin/v1")
	admin.Use(g.User, g.Admin)
	if d.Registry != nil {
		d.Registry.MountAdmin(admin, g)
	}
	return r
}
