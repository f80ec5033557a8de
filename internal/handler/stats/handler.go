package stats

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	statsSrv "github.com/canxing/crm-admin/internal/service/stats"
	"github.com/canxing/crm-admin/pkg/comm"
	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/middleware"
)

type Handler struct {
	srv statsSrv.Service
	log *logrus.Entry
}

func NewHandler(srv statsSrv.Service, l *logrus.Logger) *Handler {
	return &Handler{
		srv: srv,
		log: l.WithField("handler", "stats"),
	}
}

func (h *Handler) RouterRegister(api *gin.RouterGroup, auth gin.HandlerFunc) {
	api.GET("/task-stats/user-stats", auth, h.userStats)
	api.GET("/statistics/employee-performance", auth, h.employeePerformance)
}

// userStats 当前登录员工的周期目标完成度
func (h *Handler) userStats(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		comm.Fail(c, errs.New(errs.KindAuthentication, "missing authentication token"))
		return
	}

	var req statsSrv.TaskStatsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		comm.Fail(c, errs.New(errs.KindValidation, "invalid query parameters"))
		return
	}

	resp, err := h.srv.UserTaskStats(c.Request.Context(), sess.ID, &req)
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, resp)
}

// employeePerformance 业绩看板；userId缺省取当前用户
func (h *Handler) employeePerformance(c *gin.Context) {
	var req statsSrv.PerformanceReq
	if err := c.ShouldBindQuery(&req); err != nil {
		comm.Fail(c, errs.New(errs.KindValidation, "invalid query parameters"))
		return
	}
	if req.UserID == 0 {
		if sess := middleware.SessionFrom(c); sess != nil {
			req.UserID = sess.ID
		}
	}

	resp, err := h.srv.EmployeePerformance(c.Request.Context(), &req)
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, resp)
}
