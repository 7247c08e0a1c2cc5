package response

import "github.com/gin-gonic/gin"

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New data 为 nil 时输出 {}
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// WithData 失败响应附带明细，如字段级校验错误
func WithData(code int, msg string, data interface{}) Resp {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return New(code, msg, data)
}

// JSON 写响应，HTTP 状态与 code 一致
func JSON(c *gin.Context, httpStatus int, r Resp) {
	c.JSON(httpStatus, r)
}

func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(Status(code), Error(code, msg))
}
