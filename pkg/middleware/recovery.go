package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/canxing/crm-admin/pkg/errs"
)

// Recovery panic兜底：打全栈日志，对外只给系统错误包络
func Recovery(l *logrus.Logger) gin.HandlerFunc {
	log := l.WithField("middleware", "recovery")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("panic recovered, path: %s, panic: %v, stack: %s",
					c.Request.URL.Path, r, string(debug.Stack()))
				abort(c, errs.Wrap(errs.KindSystem, "internal server error", fmt.Errorf("%v", r)))
			}
		}()
		c.Next()
	}
}
