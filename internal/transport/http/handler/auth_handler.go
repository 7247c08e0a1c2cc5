package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/service/identity"
	"sweet-shop/internal/transport/http/ez"
	mdw "sweet-shop/internal/transport/http/middleware"
	"sweet-shop/internal/transport/http/router"
)

// AuthHandler /auth/register、/auth/login、/auth/me
type AuthHandler struct {
	svc *identity.Service
}

func NewAuthHandler(svc *identity.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(api *gin.RouterGroup, g router.Guards) {
	public := ez.New(api.Group("/auth"))

	ez.RegisterAction(public, ez.Action[identity.RegisterInput, *identity.AuthResult]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *identity.RegisterInput) (*identity.AuthResult, error) {
			return h.svc.Register(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(public, ez.Action[identity.LoginInput, *identity.AuthResult]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *identity.LoginInput) (*identity.AuthResult, error) {
			return h.svc.Login(c.Request.Context(), *in)
		},
	})

	authed := ez.New(api.Group("/auth", g.User))
	ez.RegisterAction(authed, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.Me(c.Request.Context(), c.GetString(mdw.KeyUserID))
		},
	})
}
