package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AccessLog 请求日志：5xx记Error带完整上下文，4xx记Warn，其余Info
func AccessLog(l *logrus.Logger) gin.HandlerFunc {
	log := l.WithField("middleware", "access")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.WithField("errors", c.Errors.String()).Error("request finished")
		case status >= 400:
			entry.Warn("request finished")
		default:
			entry.Info("request finished")
		}
	}
}
