package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// Guards 由引擎构造后交给各模块挂到需要的路由上
type Guards struct {
	User  gin.HandlerFunc // 校验令牌并写入 userId/role
	Admin gin.HandlerFunc // 要求 admin，须挂在 User 之后
}

// APIModule 模块可选择实现其中一个或两个接口
type APIModule interface {
	MountAPI(api *gin.RouterGroup, g Guards)
}
type AdminModule interface {
	MountAdmin(admin *gin.RouterGroup, g Guards)
}

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 模块注册表，由 main 显式构造并传给引擎
type Registry struct {
	mu        sync.RWMutex
	apiMods   []APIModule
	adminMods []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Add(m)
	}
	return r
}

// Add 根据类型断言分发到 API/Admin 列表
func (r *Registry) Add(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(APIModule); ok {
		r.apiMods = append(r.apiMods, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.adminMods = append(r.adminMods, m)
	}
}

func (r *Registry) MountAPI(api *gin.RouterGroup, g Guards) {
	r.mu.RLock()
	mods := append([]APIModule(nil), r.apiMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api, g)
	}
}

func (r *Registry) MountAdmin(admin *gin.RouterGroup, g Guards) {
	r.mu.RLock()
	mods := append([]AdminModule(nil), r.adminMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAdmin(admin, g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
