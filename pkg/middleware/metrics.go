package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics HTTP响应时间摘要 + 在途请求数
func Metrics(namespace string) gin.HandlerFunc {
	respTime := prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "resp_time_ms",
		Help:      "http response time in milliseconds",
		Objectives: map[float64]float64{
			0.5:  0.01,
			0.9:  0.01,
			0.99: 0.001,
		},
	}, []string{"method", "pattern", "status"})
	if err := prometheus.Register(respTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			respTime = are.ExistingCollector.(*prometheus.SummaryVec)
		} else {
			panic(err)
		}
	}

	inflight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "number of requests being served",
	})
	if err := prometheus.Register(inflight); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			inflight = are.ExistingCollector.(prometheus.Gauge)
		} else {
			panic(err)
		}
	}

	return func(c *gin.Context) {
		inflight.Inc()
		start := time.Now()
		defer func() {
			inflight.Dec()
			respTime.WithLabelValues(
				c.Request.Method,
				c.FullPath(),
				strconv.Itoa(c.Writer.Status()),
			).Observe(float64(time.Since(start).Milliseconds()))
		}()
		c.Next()
	}
}
