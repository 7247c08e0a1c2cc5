package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/service/ledger"
	"sweet-shop/internal/transport/http/ez"
	mdw "sweet-shop/internal/transport/http/middleware"
	"sweet-shop/internal/transport/http/router"
)

// PurchaseHandler 购买流水查询
type PurchaseHandler struct {
	ledger *ledger.Service
}

func NewPurchaseHandler(l *ledger.Service) *PurchaseHandler { return &PurchaseHandler{ledger: l} }

type purchaseQuery struct {
	UserID  string `form:"user_id"`
	SweetID string `form:"sweet_id"`
	Offset  int    `form:"offset"`
	Limit   int    `form:"limit"`
}

func (h *PurchaseHandler) MountAPI(api *gin.RouterGroup, g router.Guards) {
	e := ez.New(api.Group("/purchases", g.User))
	ez.RegisterAction(e, ez.Action[pageQuery, *ledger.PurchasePage]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *pageQuery) (*ledger.PurchasePage, error) {
			return h.ledger.History(c.Request.Context(), c.GetString(mdw.KeyUserID), in.Offset, in.Limit)
		},
	})
}

func (h *PurchaseHandler) MountAdmin(admin *gin.RouterGroup, _ router.Guards) {
	ez.RegisterAction(ez.New(admin), ez.Action[purchaseQuery, *ledger.PurchasePage]{
		Method: http.MethodGet,
		Path:   "/purchases",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *purchaseQuery) (*ledger.PurchasePage, error) {
			return h.ledger.ListPurchases(c.Request.Context(), domain.PurchaseFilter{
				UserID: q.UserID, SweetID: q.SweetID, Offset: q.Offset, Limit: q.Limit,
			})
		},
	})
}
