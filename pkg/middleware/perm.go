package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/canxing/crm-admin/pkg/errs"
)

// RequirePermission 权限闸：要求会话持有指定权限串，精确匹配。
// 必须排在Auth之后，公共路由两个都不挂，仅认证路由只挂Auth。
func RequirePermission(code string, l *logrus.Logger) gin.HandlerFunc {
	log := l.WithField("middleware", "perm")
	return func(c *gin.Context) {
		sess := SessionFrom(c)
		if sess == nil {
			abort(c, errs.New(errs.KindAuthentication, "missing authentication token"))
			return
		}
		if !sess.HasPermission(code) {
			log.Warnf("permission denied, user: %d, required: %s", sess.ID, code)
			abort(c, errs.Newf(errs.KindPermission, "permission %s required", code))
			return
		}
		c.Next()
	}
}
