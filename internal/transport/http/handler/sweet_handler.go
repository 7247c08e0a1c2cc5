package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/service/catalog"
	"sweet-shop/internal/service/ledger"
	"sweet-shop/internal/transport/http/ez"
	mdw "sweet-shop/internal/transport/http/middleware"
	"sweet-shop/internal/transport/http/router"
)

// SweetHandler 商品目录与库存动作
type SweetHandler struct {
	catalog *catalog.Service
	ledger  *ledger.Service
}

func NewSweetHandler(c *catalog.Service, l *ledger.Service) *SweetHandler {
	return &SweetHandler{catalog: c, ledger: l}
}

func (h *SweetHandler) Priority() int { return 20 }

type quantityBody struct {
	Quantity int `json:"quantity"`
}

type pageQuery struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

// 价格按字符串接收，自行解析成 decimal
type searchQuery struct {
	Name     string `form:"name"`
	Category string `form:"category"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	Offset   int    `form:"offset"`
	Limit    int    `form:"limit"`
}

func (q *searchQuery) input() (catalog.SearchInput, error) {
	in := catalog.SearchInput{Name: q.Name, Category: q.Category, Offset: q.Offset, Limit: q.Limit}
	var c domain.Collector
	parse := func(field, raw string) *decimal.Decimal {
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			c.Add(field, "must be a number")
			return nil
		}
		return &d
	}
	in.MinPrice = parse("minPrice", q.MinPrice)
	in.MaxPrice = parse("maxPrice", q.MaxPrice)
	return in, c.Err()
}

type deleted struct {
	ID string `json:"id"`
}

func (h *SweetHandler) MountAPI(api *gin.RouterGroup, g router.Guards) {
	user := ez.New(api.Group("/sweets", g.User))
	h.mountReads(user)

	ez.RegisterAction(user, ez.Action[quantityBody, *ledger.Receipt]{
		Method: http.MethodPost,
		Path:   "/:id/purchase",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *quantityBody) (*ledger.Receipt, error) {
			return h.ledger.Purchase(c.Request.Context(), c.GetString(mdw.KeyUserID), c.Param("id"), in.Quantity)
		},
	})

	h.mountWrites(ez.New(api.Group("/sweets", g.User, g.Admin)))
}

// MountAdmin 分组已校验 admin
func (h *SweetHandler) MountAdmin(admin *gin.RouterGroup, _ router.Guards) {
	sweets := ez.New(admin.Group("/sweets"))
	h.mountReads(sweets)
	h.mountWrites(sweets)
}

func (h *SweetHandler) mountReads(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[pageQuery, []domain.Sweet]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *pageQuery) ([]domain.Sweet, error) {
			return h.catalog.Search(c.Request.Context(), catalog.SearchInput{Offset: in.Offset, Limit: in.Limit})
		},
	})

	ez.RegisterAction(e, ez.Action[searchQuery, []domain.Sweet]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, q *searchQuery) ([]domain.Sweet, error) {
			in, err := q.input()
			if err != nil {
				return nil, err
			}
			return h.catalog.Search(c.Request.Context(), in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Sweet]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Sweet, error) {
			return h.catalog.Get(c.Request.Context(), c.Param("id"))
		},
	})
}

func (h *SweetHandler) mountWrites(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[catalog.CreateInput, *domain.Sweet]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *catalog.CreateInput) (*domain.Sweet, error) {
			return h.catalog.Create(c.Request.Context(), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[catalog.UpdateInput, *domain.Sweet]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *catalog.UpdateInput) (*domain.Sweet, error) {
			return h.catalog.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, deleted]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (deleted, error) {
			id := c.Param("id")
			if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
				return deleted{}, err
			}
			return deleted{ID: id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[quantityBody, *domain.Sweet]{
		Method: http.MethodPost,
		Path:   "/:id/restock",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *quantityBody) (*domain.Sweet, error) {
			return h.ledger.Restock(c.Request.Context(), c.Param("id"), in.Quantity)
		},
	})
}
