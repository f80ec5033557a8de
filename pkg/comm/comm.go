package comm

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/canxing/crm-admin/pkg/errs"
)

// Response 统一响应包络，code=0表示成功
type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
	Path      string `json:"path"`
}

// OK 成功响应
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:      0,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		Path:      c.Request.URL.Path,
	})
}

// Fail 失败响应：按错误类别映射状态码与业务码
func Fail(c *gin.Context, err error) {
	e := errs.From(err)
	c.JSON(e.Status(), Response{
		Code:      e.Code,
		Message:   e.Message,
		Data:      nil,
		Timestamp: time.Now().UnixMilli(),
		Path:      c.Request.URL.Path,
	})
}

// BasePageReq 分页请求基类
type BasePageReq struct {
	Current int `form:"current" json:"current"`
	Size    int `form:"size" json:"size"`
}

// Normalize 修正非法分页参数
func (r *BasePageReq) Normalize() {
	if r.Current < 1 {
		r.Current = 1
	}
	if r.Size < 1 {
		r.Size = 10
	}
	if r.Size > 200 {
		r.Size = 200
	}
}

// Offset 数据库偏移量
func (r *BasePageReq) Offset() int {
	return (r.Current - 1) * r.Size
}

// Page 分页响应包络
type Page struct {
	Records any   `json:"records"`
	Current int   `json:"current"`
	Size    int   `json:"size"`
	Total   int64 `json:"total"`
	Pages   int64 `json:"pages"`
}

func NewPage(records any, current, size int, total int64) *Page {
	pages := int64(0)
	if size > 0 {
		pages = (total + int64(size) - 1) / int64(size)
	}
	return &Page{
		Records: records,
		Current: current,
		Size:    size,
		Total:   total,
		Pages:   pages,
	}
}
