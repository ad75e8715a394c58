package authgin

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestLogger emits one structured line per request, tagged with a
// generated request id that is also echoed back in X-Request-ID.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id": reqID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("http: request")
		} else {
			entry.Info("http: request")
		}
	}
}
