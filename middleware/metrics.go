package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/questhub/utils"
)

// RequestMetrics records request latency labelled by the matched route template.
func RequestMetrics() gin.HandlerFunc {
	m := utils.AppMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
