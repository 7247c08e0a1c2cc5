package ez

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "sweet-shop/internal/transport/http/response"
)

// EZ 路由组的轻封装：统一绑定、错误映射与响应信封
type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

func (e EZ) Group() *gin.RouterGroup { return e.g }

// POSTFILES 处理 multipart/form-data 上传，fieldName 下至少一个文件
func POSTFILES(e EZ, path, fieldName string, h func(c *gin.Context, files []*multipart.FileHeader) (any, error), mw ...gin.HandlerFunc) {
	handlers := append(mw, func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			Fail(c, BindError(err))
			return
		}
		files := form.File[fieldName]
		if len(files) == 0 {
			Fail(c, BadRequest("no file uploaded in field "+fieldName))
			return
		}
		data, err := h(c, files)
		if err != nil {
			Fail(c, err)
			return
		}
		Success(c, http.StatusOK, data)
	})
	e.g.POST(path, handlers...)
}

// Fail 写错误信封并中止；5xx 记入 c.Errors 供访问日志输出
func Fail(c *gin.Context, err error) {
	ae := FromDomain(err)
	if ae.Code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	msg := ae.Msg
	if msg == "" {
		msg = resp.CodeMsgMap[ae.Code]
	}
	c.AbortWithStatusJSON(resp.Status(ae.Code), resp.WithData(ae.Code, msg, ae.Data))
}

func Success(c *gin.Context, status int, data any) {
	resp.JSON(c, status, resp.OK(data))
}
