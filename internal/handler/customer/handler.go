package customer

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	custSrv "github.com/canxing/crm-admin/internal/service/customer"
	"github.com/canxing/crm-admin/pkg/comm"
	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/middleware"
)

type Handler struct {
	srv custSrv.Service
	log *logrus.Entry
}

func NewHandler(srv custSrv.Service, l *logrus.Logger) *Handler {
	return &Handler{
		srv: srv,
		log: l.WithField("handler", "customer"),
	}
}

// RouterRegister 客户路由：认证之上再叠权限闸
func (h *Handler) RouterRegister(api *gin.RouterGroup, auth gin.HandlerFunc, l *logrus.Logger) {
	g := api.Group("/customers", auth)
	g.GET("", middleware.RequirePermission("customer:list", l), h.list)
	g.PUT("/:id/status", middleware.RequirePermission("customer:update", l), h.updateStatus)
}

func (h *Handler) list(c *gin.Context) {
	var req custSrv.ListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		comm.Fail(c, errs.New(errs.KindValidation, "invalid query parameters"))
		return
	}

	page, err := h.srv.List(c.Request.Context(), &req)
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, page)
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		comm.Fail(c, errs.New(errs.KindValidation, "invalid customer id"))
		return
	}

	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		comm.Fail(c, errs.New(errs.KindValidation, "status is required"))
		return
	}

	cust, err := h.srv.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, cust)
}
