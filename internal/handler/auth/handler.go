package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	authSrv "github.com/canxing/crm-admin/internal/service/auth"
	"github.com/canxing/crm-admin/pkg/comm"
	"github.com/canxing/crm-admin/pkg/errs"
	"github.com/canxing/crm-admin/pkg/middleware"
)

type Handler struct {
	srv authSrv.Service
	log *logrus.Entry
}

func NewHandler(srv authSrv.Service, l *logrus.Logger) *Handler {
	return &Handler{
		srv: srv,
		log: l.WithField("handler", "auth"),
	}
}

// RouterRegister 挂载认证路由。login/refresh/captcha是公共端点，
// logout/me走认证中间件。
func (h *Handler) RouterRegister(api *gin.RouterGroup, auth gin.HandlerFunc) {
	pub := api.Group("/auth")
	pub.POST("/login", h.login)
	pub.POST("/refresh", h.refresh)
	pub.GET("/captcha", h.captcha)

	authed := api.Group("/auth", auth)
	authed.POST("/logout", h.logout)
	authed.GET("/me", h.me)
}

func (h *Handler) login(c *gin.Context) {
	var req authSrv.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("failed to bind login request: %v", err)
		comm.Fail(c, errs.New(errs.KindValidation, "invalid request body"))
		return
	}
	req.IP = c.ClientIP()

	resp, err := h.srv.Login(c.Request.Context(), &req)
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, resp)
}

func (h *Handler) logout(c *gin.Context) {
	h.srv.Logout(c.Request.Context(), c.GetHeader("Authorization"), middleware.SessionFrom(c))
	comm.OK(c, nil)
}

func (h *Handler) refresh(c *gin.Context) {
	var req authSrv.RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		comm.Fail(c, errs.New(errs.KindValidation, "refreshToken is required"))
		return
	}

	resp, err := h.srv.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, resp)
}

func (h *Handler) me(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		comm.Fail(c, errs.New(errs.KindAuthentication, "missing authentication token"))
		return
	}

	info, err := h.srv.CurrentUser(c.Request.Context(), sess.ID)
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, info)
}

func (h *Handler) captcha(c *gin.Context) {
	resp, err := h.srv.GenerateCaptcha(c.Request.Context())
	if err != nil {
		comm.Fail(c, err)
		return
	}
	comm.OK(c, resp)
}
