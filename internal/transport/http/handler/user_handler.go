package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweet-shop/internal/service/identity"
	"sweet-shop/internal/transport/http/ez"
	"sweet-shop/internal/transport/http/router"
)

// UserHandler GET /admin/v1/users
type UserHandler struct {
	svc *identity.Service
}

func NewUserHandler(svc *identity.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup, _ router.Guards) {
	ez.RegisterAction(ez.New(admin), ez.Action[identity.ListInput, *identity.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *identity.ListInput) (*identity.UserPage, error) {
			return h.svc.List(c.Request.Context(), *in)
		},
	})
}
